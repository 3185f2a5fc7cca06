package config

import (
	"path/filepath"
	"strings"
)

// Directories maps directory roles to paths relative to the project root.
type Directories struct {
	Archive string `json:"archive"`
	Dist    string `json:"dist"`
	Src     string `json:"src"`
	Test    string `json:"test"`
}

// Tools lists optional external commands. Each command is an argv prefix;
// the file being processed is appended as the last argument.
type Tools struct {
	Linter          []string `json:"linter,omitempty"`
	ImageCompressor []string `json:"imageCompressor,omitempty"`
}

// Config is the resolved, immutable build configuration.
type Config struct {
	// Root is the directory holding the manifest. Every relative path is
	// resolved against it.
	Root string

	Name          string
	Homepage      string
	JQueryVersion string
	Dirs          Directories

	JQueryPath     string
	HtaccessPath   string
	LicensePath    string
	MainStylesheet string
	MainScript     string
	Author         string
	LintTargets    []string
	ArchiveFormat  string
	Concurrency    int
	Tools          Tools
}

// Path resolves a project-relative path against Root.
func (c *Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Root, filepath.FromSlash(rel))
}

func (c *Config) SrcDir() string     { return c.Path(c.Dirs.Src) }
func (c *Config) DistDir() string    { return c.Path(c.Dirs.Dist) }
func (c *Config) ArchiveDir() string { return c.Path(c.Dirs.Archive) }
func (c *Config) TestDir() string    { return c.Path(c.Dirs.Test) }

// ArchivePath returns <archive dir>/<name>.<format>.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.ArchiveDir(), c.Name+"."+c.ArchiveFormat)
}

// Banner is the attribution header prepended to the main stylesheet.
func (c *Config) Banner() string {
	return "/*!*! " + c.Author + " | " + c.Homepage + " *!*/\n\n.cbalink{display: none;}"
}

// MainStylesheetFile returns the stylesheet path relative to the source dir.
func (c *Config) MainStylesheetFile() string {
	return "css/" + c.MainStylesheet + ".css"
}

// MainScriptFile returns the page script path relative to the source dir.
func (c *Config) MainScriptFile() string {
	return "js/" + c.MainScript + ".js"
}

// Placeholders returns the values substituted into index.html.
func (c *Config) Placeholders() map[string]string {
	return map[string]string{
		"JQUERY_VERSION": c.JQueryVersion,
		"MAIN_JS_FILE":   c.MainScript + ".js",
		"MAIN_CSS_FILE":  c.MainStylesheet + ".min.css",
	}
}

// ArchiveExt normalizes an archive format name.
func ArchiveExt(format string) string {
	switch f := strings.TrimPrefix(strings.ToLower(format), "."); f {
	case "tgz":
		return "tar.gz"
	case "txz":
		return "tar.xz"
	default:
		return f
	}
}
