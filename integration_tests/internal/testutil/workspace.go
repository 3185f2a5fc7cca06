package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// DefaultManifest is the package.json of a generated test project.
const DefaultManifest = `{
  "name": "integration-site",
  "homepage": "https://example.com",
  "devDependencies": {"jquery": "2.1.4"},
  "scaffold-config": {
    "directories": {"archive": "archive", "dist": "dist", "src": "src", "test": "test"}
  }
}
`

// DefaultProject is a small site covering every copy step.
func DefaultProject() map[string]string {
	return map[string]string{
		"package.json":                                      DefaultManifest,
		"LICENSE.txt":                                       "MIT\n",
		"gulpfile.js":                                       "var gulp = {};\n",
		"node_modules/jquery/dist/jquery.min.js":            "/*! jQuery */",
		"node_modules/apache-server-configs/dist/.htaccess": "# ErrorDocument 404 /404.html\n",
		"src/index.html":                                    "<script src=\"js/vendor/jquery-{{JQUERY_VERSION}}.min.js\"></script>\n",
		"src/css/styles.css":                                "body { margin: 0; }\n",
		"src/js/plugins.js":                                 "var plugins = [];\n",
		"src/.assets/js/app.js":                             "var app = {};\n",
		"src/img/favicon.svg":                               "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 10 10\"></svg>\n",
		"src/robots.txt":                                    "User-agent: *\n",
	}
}

// SetupTestWorkspace writes files into a fresh project directory and
// returns its path. The directory is removed when the test ends unless
// keep is set.
func SetupTestWorkspace(t *testing.T, files map[string]string, keep bool) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "sitebuild-it-*")
	require.NoError(t, err, "failed to create test workspace directory")

	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	t.Cleanup(func() {
		if keep {
			t.Logf("Test project preserved in: %s", dir)
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Logf("Warning: failed to clean up workspace directory %s: %v", dir, err)
		}
	})
	return dir
}
