package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
)

const testManifest = `{
  "name": "site",
  "homepage": "https://example.com",
  "devDependencies": {"jquery": "2.1.4"},
  "scaffold-config": {"directories": {"archive": "archive", "dist": "dist", "src": "src", "test": "test"}}
}
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["package.json"] = testManifest
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return filepath.Join(root, "package.json")
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	manifestPath, concurrency, graphFormat = "package.json", 0, "text"
	debug, verbose, jsonLogs, quiet = false, false, false, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestTasksCommand(t *testing.T) {
	manifest := writeProject(t, map[string]string{})

	out, _, err := execute(t, "tasks", "--manifest", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "archive:create_archive_dir")
	assert.Contains(t, out, "[clean lint:js] -> copy")
}

func TestGraphCommand(t *testing.T) {
	manifest := writeProject(t, map[string]string{})

	out, _, err := execute(t, "graph", "archive", "--manifest", manifest, "--format", "dot")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph sitebuild {")
	assert.Contains(t, out, `"build" -> "clean" [style=dashed];`)

	_, stderr, err := execute(t, "graph", "--manifest", manifest, "--format", "png")
	assert.Error(t, err)
	assert.Contains(t, stderr, "unsupported graph format")
}

func TestRunCommand_Build(t *testing.T) {
	manifest := writeProject(t, map[string]string{
		"gulpfile.js":    "var ok = true;\n",
		"src/index.html": "<p>{{JQUERY_VERSION}}</p>\n",
		"src/humans.txt": "team\n",
	})

	out, _, err := execute(t, "run", "--manifest", manifest, "--concurrency", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "default completed")

	dist := filepath.Join(filepath.Dir(manifest), "dist")
	data, err := os.ReadFile(filepath.Join(dist, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>2.1.4</p>\n", string(data))
	_, err = os.Stat(filepath.Join(dist, "humans.txt"))
	assert.NoError(t, err)
}

func TestRunCommand_LintFailure(t *testing.T) {
	manifest := writeProject(t, map[string]string{
		"gulpfile.js":    "var a = 1;   \n",
		"src/index.html": "<p></p>\n",
	})

	out, stderr, err := execute(t, "run", "build", "--manifest", manifest)
	require.Error(t, err)
	assert.True(t, builderrors.IsLintViolation(err))
	assert.Contains(t, out, "no-trailing-spaces")
	assert.Contains(t, stderr, "LINT-001")

	_, err = os.Stat(filepath.Join(filepath.Dir(manifest), "dist", "index.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand_Errors(t *testing.T) {
	manifest := writeProject(t, map[string]string{})

	_, _, err := execute(t, "run", "deploy", "--manifest", manifest)
	assert.True(t, builderrors.IsUnknownTask(err))

	_, _, err = execute(t, "run", "--manifest", filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, builderrors.IsConfiguration(err))

	_, _, err = execute(t, "tasks", "--manifest", manifest, "--concurrency=-1")
	assert.True(t, builderrors.IsConfiguration(err))
}
