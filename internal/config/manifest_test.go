package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
)

const packageJSON = `{
  "name": "bilous-site",
  "homepage": "https://example.com",
  "devDependencies": {
    "jquery": "2.1.4",
    "gulp": "^3.8.11"
  },
  "scaffold-config": {
    "directories": {
      "archive": "archive",
      "dist": "dist",
      "src": "src",
      "test": "test"
    }
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_PackageJSON(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "package.json", packageJSON)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "bilous-site", cfg.Name)
	assert.Equal(t, "https://example.com", cfg.Homepage)
	assert.Equal(t, "2.1.4", cfg.JQueryVersion)
	assert.Equal(t, Directories{Archive: "archive", Dist: "dist", Src: "src", Test: "test"}, cfg.Dirs)
	assert.Equal(t, filepath.Join(dir, "dist"), cfg.DistDir())
	assert.Equal(t, filepath.Join(dir, "test"), cfg.TestDir())
	assert.Equal(t, filepath.Join(dir, "archive", "bilous-site.zip"), cfg.ArchivePath())

	// Defaults
	assert.Equal(t, "zip", cfg.ArchiveFormat)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, "node_modules/jquery/dist/jquery.min.js", cfg.JQueryPath)
	assert.Equal(t, "css/styles.css", cfg.MainStylesheetFile())
	assert.Equal(t, "js/main.js", cfg.MainScriptFile())
	assert.Equal(t, map[string]string{
		"JQUERY_VERSION": "2.1.4",
		"MAIN_JS_FILE":   "main.js",
		"MAIN_CSS_FILE":  "styles.min.css",
	}, cfg.Placeholders())
	assert.Equal(t,
		"/*!*! Taras Bilous:  tbilous@gmail.com | https://example.com *!*/\n\n.cbalink{display: none;}",
		cfg.Banner())
}

func TestLoad_JSONX(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sitebuild.jsonx", `{
  "name": "site",
  "homepage": "https://example.org",
  "devDependencies": {"jquery": "3.7.1",},
  "scaffold-config": {"directories": {"dist": "public", "src": "source",},},
  "sitebuild": {
    "archiveFormat": "tgz",
    "concurrency": 2,
    "tools": {"linter": ["eslint", "--quiet"],},
  },
}
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "3.7.1", cfg.JQueryVersion)
	assert.Equal(t, "public", cfg.Dirs.Dist)
	assert.Equal(t, "source", cfg.Dirs.Src)
	assert.Equal(t, "archive", cfg.Dirs.Archive)
	assert.Equal(t, "tar.gz", cfg.ArchiveFormat)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, []string{"eslint", "--quiet"}, cfg.Tools.Linter)
}

func TestLoad_HCL(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sitebuild.hcl", `
name           = "site"
homepage       = "https://example.net"
jquery_version = "1.11.3"

directories {
  dist = "build"
}

sitebuild {
  archive_format = "tar.xz"
  lint_targets   = ["src/js/*.js"]

  tools {
    image_compressor = ["optipng", "-o7"]
  }
}
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "site", cfg.Name)
	assert.Equal(t, "1.11.3", cfg.JQueryVersion)
	assert.Equal(t, "build", cfg.Dirs.Dist)
	assert.Equal(t, "src", cfg.Dirs.Src)
	assert.Equal(t, "tar.xz", cfg.ArchiveFormat)
	assert.Equal(t, []string{"src/js/*.js"}, cfg.LintTargets)
	assert.Equal(t, []string{"optipng", "-o7"}, cfg.Tools.ImageCompressor)
	assert.Equal(t, filepath.Join(dir, "archive", "site.tar.xz"), cfg.ArchivePath())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		file     string
		contents string
	}{
		{"missing name", "package.json", `{"homepage": "x"}`},
		{"bad json", "package.json", `{"name": `},
		{"unsupported extension", "site.yaml", `name: site`},
		{"bad archive format", "package.json", `{"name": "s", "sitebuild": {"archiveFormat": "rar"}}`},
		{"dist equals src", "package.json", `{"name": "s", "scaffold-config": {"directories": {"dist": "src"}}}`},
		{"dist escapes root", "package.json", `{"name": "s", "scaffold-config": {"directories": {"dist": "../out"}}}`},
		{"name with separator", "package.json", `{"name": "a/b"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := filepath.Join(dir, filepath.Base(t.Name()))
			require.NoError(t, os.MkdirAll(sub, 0o755))
			p := writeFile(t, sub, tt.file, tt.contents)

			_, err := Load(p)
			require.Error(t, err)
			assert.True(t, builderrors.IsConfiguration(err), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "package.json"))
	assert.True(t, builderrors.IsConfiguration(err))
}

func TestArchiveExt(t *testing.T) {
	assert.Equal(t, "zip", ArchiveExt(".ZIP"))
	assert.Equal(t, "tar.gz", ArchiveExt("tgz"))
	assert.Equal(t, "tar.xz", ArchiveExt("txz"))
	assert.Equal(t, "tar.gz", ArchiveExt("tar.gz"))
}
