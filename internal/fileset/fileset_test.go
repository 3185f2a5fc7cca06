package fileset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o644))
	}
}

func rels(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Rel)
	}
	return out
}

func TestResolve_ExclusionsAndHidden(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		"src/css/styles.css",
		"src/css/extra.css",
		"src/.assets/js/main.js",
		"src/img/photo.png",
		"src/js/main.js",
		"src/index.html",
		"src/other.txt",
		"src/.htaccess",
	)

	s := New(root,
		"src/**/*",
		"!src/css/styles.css",
		"!src/.assets/**",
		"!src/img/**",
		"!src/js/main.js",
		"!src/index.html",
	)
	files, err := s.Resolve()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"css/extra.css", "other.txt"}, rels(files))
}

func TestResolve_DotIncludesHidden(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "dist/.htaccess", "dist/index.html", "dist/.well-known/security.txt")

	files, err := New(root, "dist/**/*").WithDot().Resolve()
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{".htaccess", "index.html", ".well-known/security.txt"},
		rels(files))
}

func TestResolve_LaterExclusionOverridesEarlierInclude(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "src/img/prod/sweet-2.jpg", "src/robots.txt")

	files, err := New(root, "src/**/*", "src/img/prod/sweet-2.jpg", "!src/img/**").Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"robots.txt"}, rels(files))
}

func TestResolve_RelativeToGlobBase(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root,
		"src/img/a.png",
		"src/img/icons/b.gif",
		"src/img/c.svg",
		"node_modules/apache-server-configs/dist/.htaccess",
	)

	files, err := New(root, "src/img/**/*.{gif,jpg,png}").Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "icons/b.gif"}, rels(files))

	// An explicit hidden name matches without Dot.
	files, err = New(root, "node_modules/apache-server-configs/dist/.htaccess").Resolve()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".htaccess", files[0].Rel)
}

func TestResolve_ReevaluatedOnEachCall(t *testing.T) {
	root := t.TempDir()
	makeTree(t, root, "src/a.txt")

	s := New(root, "src/*.txt")
	first, err := s.Resolve()
	require.NoError(t, err)
	assert.Len(t, first, 1)

	makeTree(t, root, "src/b.txt")
	second, err := s.Resolve()
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestResolve_NoMatchesIsEmpty(t *testing.T) {
	files, err := New(t.TempDir(), "missing/**/*.js").Resolve()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolve_BadPattern(t *testing.T) {
	_, err := New(t.TempDir(), "src/**/*", "!src/[").Resolve()
	assert.Error(t, err)
}
