package transform

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/fileset"
)

func rules(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestLintSource(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		rules []string
	}{
		{
			name: "clean",
			src:  "(function ($) {\n  'use strict';\n  $.fn.noop = function () { return this; };\n}(jQuery));\n",
		},
		{
			name:  "trailing whitespace",
			src:   "var a = 1;   \nvar b = 2;\n",
			rules: []string{RuleTrailingWhitespace},
		},
		{
			name:  "debugger statement",
			src:   "function f() {\n  debugger;\n}\n",
			rules: []string{RuleDebugger},
		},
		{
			name: "debugger inside string and comment",
			src:  "var s = 'debugger';\n// debugger\nvar r = /debugger/g;\n",
		},
		{
			name:  "syntax error",
			src:   "var = ;\n",
			rules: []string{RuleSyntax},
		},
		{
			name:  "mixed indentation",
			src:   "function f() {\n\t  return 1;\n}\n",
			rules: []string{RuleMixedIndent},
		},
		{
			name: "tab aligned block comment",
			src:  "\t/**\n\t * doc\n\t */\n\tvar a = 1;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := LintSource("plugins.js", []byte(tt.src))
			if len(tt.rules) == 0 {
				assert.Empty(t, vs)
				return
			}
			assert.Equal(t, tt.rules, rules(vs))
		})
	}
}

func TestLintSource_Positions(t *testing.T) {
	vs := LintSource("a.js", []byte("var a = 1;\nfunction f() {\n    debugger;\n}\n"))
	require.Len(t, vs, 1)
	assert.Equal(t, 3, vs[0].Line)
	assert.Equal(t, 5, vs[0].Column)
}

func TestLinter_RunFailsWithReport(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/js/plugin.js": "debugger;\n",
		"src/js/ok.js":     "var ok = true;\n",
	})

	var out bytes.Buffer
	l := &Linter{Files: fileset.New(root, "gulpfile.js", "src/js/*.js"), Out: &out}
	err := l.Run(context.Background())

	require.Error(t, err)
	assert.True(t, builderrors.IsLintViolation(err))
	assert.Contains(t, out.String(), "src/js/plugin.js")
	assert.Contains(t, out.String(), "no-debugger")
	assert.Contains(t, out.String(), "1 problem")
	assert.NotContains(t, out.String(), "ok.js")
}

func TestLinter_RunPassesCleanFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/js/plugin.js": "var ok = true;\n"})

	var out bytes.Buffer
	l := &Linter{Files: fileset.New(root, "src/js/*.js"), Out: &out}
	require.NoError(t, l.Run(context.Background()))
	assert.Empty(t, out.String())
}

func TestLinter_External(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/js/plugin.js": "var ok = true;\n"})
	files := fileset.New(root, "src/js/*.js")

	failing := &Linter{
		Files:    files,
		External: &Tool{Command: []string{"sh", "-c", `echo "$0: W033 missing semicolon"; exit 2`}},
		Out:      &bytes.Buffer{},
	}
	vs, err := failing.Lint(context.Background())
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, RuleExternal, vs[0].Rule)
	assert.Contains(t, vs[0].Message, filepath.Join(root, "src/js/plugin.js"))

	missing := &Linter{Files: files, External: &Tool{Command: []string{"sitebuild-no-such-linter"}}}
	_, err = missing.Lint(context.Background())
	assert.True(t, builderrors.IsExternalTool(err))
}

func TestWriteStylish(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteStylish(&out, []Violation{
		{File: "b.js", Line: 2, Column: 1, Rule: RuleDebugger, Message: "Forgotten 'debugger' statement?"},
		{File: "a.js", Line: 1, Column: 9, Rule: RuleTrailingWhitespace, Message: "Trailing whitespace."},
	}))

	s := out.String()
	assert.Less(t, bytes.Index(out.Bytes(), []byte("a.js")), bytes.Index(out.Bytes(), []byte("b.js")))
	assert.Contains(t, s, "line 1  col 9")
	assert.Contains(t, s, "2 problems")
}
