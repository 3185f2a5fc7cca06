package transform

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/fileset"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

// Lint rule names.
const (
	RuleSyntax             = "syntax"
	RuleTrailingWhitespace = "no-trailing-spaces"
	RuleDebugger           = "no-debugger"
	RuleMixedIndent        = "no-mixed-spaces-and-tabs"
	RuleExternal           = "external"
)

// Violation is one lint finding. Line and Column are 1-based; 0 means the
// position is unknown.
type Violation struct {
	File    string
	Line    int
	Column  int
	Rule    string
	Message string
}

// LintSource runs the built-in checks over one script.
func LintSource(file string, src []byte) []Violation {
	var vs []Violation

	if _, err := js.Parse(parse.NewInputBytes(src), js.Options{}); err != nil {
		v := Violation{File: file, Rule: RuleSyntax, Message: err.Error()}
		var perr *parse.Error
		if errors.As(err, &perr) {
			v.Line, v.Column, v.Message = perr.Line, perr.Column, perr.Message
		}
		vs = append(vs, v)
	}

	vs = append(vs, lintLines(file, src)...)
	vs = append(vs, lintDebugger(file, src)...)
	sortViolations(vs)
	return vs
}

func lintLines(file string, src []byte) []Violation {
	var vs []Violation
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSuffix(sc.Text(), "\r")

		if trimmed := strings.TrimRight(line, " \t"); len(trimmed) != len(line) {
			vs = append(vs, Violation{
				File: file, Line: n, Column: len(trimmed) + 1,
				Rule: RuleTrailingWhitespace, Message: "Trailing whitespace.",
			})
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if strings.Contains(indent, "\t") && strings.Contains(indent, " ") && !blockCommentContinuation(line) {
			vs = append(vs, Violation{
				File: file, Line: n, Column: 1,
				Rule: RuleMixedIndent, Message: "Mixed spaces and tabs.",
			})
		}
	}
	return vs
}

// blockCommentContinuation reports the tab-then-space " *" style used to
// align block comments.
func blockCommentContinuation(line string) bool {
	rest := strings.TrimLeft(line, "\t")
	return strings.HasPrefix(rest, " *") && strings.TrimLeft(rest, " ")[0] == '*'
}

func lintDebugger(file string, src []byte) []Violation {
	var vs []Violation
	l := js.NewLexer(parse.NewInputBytes(src))
	line, col := 1, 1
	prev := js.ErrorToken
	for {
		tt, text := l.Next()
		if tt == js.ErrorToken {
			return vs
		}
		if (tt == js.DivToken || tt == js.DivEqToken) && regExpAllowed(prev) {
			tt, text = l.RegExp()
			if tt == js.ErrorToken {
				return vs
			}
		}
		if tt == js.DebuggerToken {
			vs = append(vs, Violation{
				File: file, Line: line, Column: col,
				Rule: RuleDebugger, Message: "Forgotten 'debugger' statement?",
			})
		}

		if nl := bytes.Count(text, []byte{'\n'}); nl > 0 {
			line += nl
			col = len(text) - bytes.LastIndexByte(text, '\n')
		} else {
			col += len(text)
		}

		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
		default:
			prev = tt
		}
	}
}

// regExpAllowed reports whether a slash after prev starts a regular
// expression rather than a division.
func regExpAllowed(prev js.TokenType) bool {
	switch prev {
	case js.ErrorToken:
		return true
	case js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.ThisToken, js.SuperToken, js.TrueToken, js.FalseToken, js.NullToken,
		js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken,
		js.PostIncrToken, js.PostDecrToken:
		return false
	}
	if js.IsNumeric(prev) || js.IsIdentifier(prev) {
		return false
	}
	return js.IsPunctuator(prev) || js.IsOperator(prev) || js.IsReservedWord(prev)
}

// Linter is the lint gate over a set of scripts.
type Linter struct {
	Files *fileset.FileSet
	// External is an optional linter command; each file path is appended.
	// A non-zero exit marks the file as failing and its stdout lines are
	// reported as violations.
	External *Tool
	// Out receives the report.
	Out io.Writer
}

// Lint checks every matched file and returns the violations. The error is
// reserved for failures to read files or run the external tool.
func (l *Linter) Lint(ctx context.Context) ([]Violation, error) {
	files, err := l.Files.Resolve()
	if err != nil {
		return nil, builderrors.NewFileSystemError(l.Files.Root, "Resolve lint targets", err)
	}

	var all []Violation
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, builderrors.NewFileSystemError(f.Path, "Read lint target", err)
		}
		name := displayName(l.Files.Root, f.Path)
		all = append(all, LintSource(name, src)...)

		if l.External != nil {
			vs, err := l.external(ctx, name, f.Path)
			if err != nil {
				return nil, err
			}
			all = append(all, vs...)
		}
	}
	logger.Op.WithFields(map[string]interface{}{
		"files":      len(files),
		"violations": len(all),
	}).Debug("Lint finished")
	return all, nil
}

func (l *Linter) external(ctx context.Context, name, path string) ([]Violation, error) {
	out, err := l.External.Run(ctx, nil, path)
	if err == nil {
		return nil, nil
	}
	if out == nil || out.ExitCode <= 0 {
		return nil, err
	}

	var vs []Violation
	for _, line := range strings.Split(string(out.Stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			vs = append(vs, Violation{File: name, Rule: RuleExternal, Message: line})
		}
	}
	if len(vs) == 0 {
		vs = append(vs, Violation{
			File: name, Rule: RuleExternal,
			Message: strings.TrimSpace(string(out.Stderr)),
		})
	}
	return vs, nil
}

// Run lints, writes the report and fails with a LintViolationError when
// anything was found.
func (l *Linter) Run(ctx context.Context) error {
	vs, err := l.Lint(ctx)
	if err != nil {
		return err
	}

	out := l.Out
	if out == nil {
		out = os.Stdout
	}
	if len(vs) == 0 {
		logger.User.Lintf("No lint problems")
		return nil
	}
	if err := WriteStylish(out, vs); err != nil {
		return builderrors.NewFileSystemError("lint report", "Write lint report", err)
	}
	return builderrors.NewLintViolationError(len(vs), violationFiles(vs))
}

func displayName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func violationFiles(vs []Violation) []string {
	var files []string
	seen := make(map[string]bool)
	for _, v := range vs {
		if !seen[v.File] {
			seen[v.File] = true
			files = append(files, v.File)
		}
	}
	return files
}
