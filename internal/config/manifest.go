package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonutil"
	"shanhu.io/misc/jsonx"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

// Defaults for settings the manifest may leave out.
const (
	DefaultManifest       = "package.json"
	DefaultMainStylesheet = "styles"
	DefaultMainScript     = "main"
	DefaultAuthor         = "Taras Bilous:  tbilous@gmail.com"
	DefaultArchiveFormat  = "zip"
	DefaultConcurrency    = 4
)

// Settings is the optional "sitebuild" section of a manifest.
type Settings struct {
	JQueryPath     string   `json:"jqueryPath,omitempty"`
	HtaccessPath   string   `json:"htaccessPath,omitempty"`
	LicensePath    string   `json:"licensePath,omitempty"`
	MainStylesheet string   `json:"mainStylesheet,omitempty"`
	MainScript     string   `json:"mainScript,omitempty"`
	Author         string   `json:"author,omitempty"`
	LintTargets    []string `json:"lintTargets,omitempty"`
	ArchiveFormat  string   `json:"archiveFormat,omitempty"`
	Concurrency    int      `json:"concurrency,omitempty"`
	Tools          Tools    `json:"tools"`
}

type scaffoldConfig struct {
	Directories Directories `json:"directories"`
}

// Manifest is the package.json shaped project manifest.
type Manifest struct {
	Name            string            `json:"name"`
	Homepage        string            `json:"homepage"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scaffold        scaffoldConfig    `json:"scaffold-config"`
	Sitebuild       *Settings         `json:"sitebuild,omitempty"`
}

type hclDirectories struct {
	Archive string `hcl:"archive,optional"`
	Dist    string `hcl:"dist,optional"`
	Src     string `hcl:"src,optional"`
	Test    string `hcl:"test,optional"`
}

type hclTools struct {
	Linter          []string `hcl:"linter,optional"`
	ImageCompressor []string `hcl:"image_compressor,optional"`
}

type hclSettings struct {
	JQueryPath     string    `hcl:"jquery_path,optional"`
	HtaccessPath   string    `hcl:"htaccess_path,optional"`
	LicensePath    string    `hcl:"license_path,optional"`
	MainStylesheet string    `hcl:"main_stylesheet,optional"`
	MainScript     string    `hcl:"main_script,optional"`
	Author         string    `hcl:"author,optional"`
	LintTargets    []string  `hcl:"lint_targets,optional"`
	ArchiveFormat  string    `hcl:"archive_format,optional"`
	Concurrency    int       `hcl:"concurrency,optional"`
	Tools          *hclTools `hcl:"tools,block"`
}

// hclManifest is the top-level structure of a sitebuild.hcl file.
type hclManifest struct {
	Name          string          `hcl:"name"`
	Homepage      string          `hcl:"homepage,optional"`
	JQueryVersion string          `hcl:"jquery_version,optional"`
	Directories   *hclDirectories `hcl:"directories,block"`
	Sitebuild     *hclSettings    `hcl:"sitebuild,block"`
}

func (h *hclManifest) manifest() *Manifest {
	m := &Manifest{
		Name:            h.Name,
		Homepage:        h.Homepage,
		DevDependencies: map[string]string{},
	}
	if h.JQueryVersion != "" {
		m.DevDependencies["jquery"] = h.JQueryVersion
	}
	if d := h.Directories; d != nil {
		m.Scaffold.Directories = Directories{Archive: d.Archive, Dist: d.Dist, Src: d.Src, Test: d.Test}
	}
	if s := h.Sitebuild; s != nil {
		m.Sitebuild = &Settings{
			JQueryPath:     s.JQueryPath,
			HtaccessPath:   s.HtaccessPath,
			LicensePath:    s.LicensePath,
			MainStylesheet: s.MainStylesheet,
			MainScript:     s.MainScript,
			Author:         s.Author,
			LintTargets:    s.LintTargets,
			ArchiveFormat:  s.ArchiveFormat,
			Concurrency:    s.Concurrency,
		}
		if s.Tools != nil {
			m.Sitebuild.Tools = Tools{Linter: s.Tools.Linter, ImageCompressor: s.Tools.ImageCompressor}
		}
	}
	return m
}

// ReadManifest parses a manifest file. The format follows the extension:
// .json, .jsonx or .hcl.
func ReadManifest(path string) (*Manifest, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		m := new(Manifest)
		if err := jsonutil.ReadFile(path, m); err != nil {
			return nil, errcode.Annotate(err, "read json manifest")
		}
		return m, nil
	case ".jsonx":
		m := new(Manifest)
		if err := jsonx.ReadFile(path, m); err != nil {
			return nil, errcode.Annotate(err, "read jsonx manifest")
		}
		return m, nil
	case ".hcl":
		return readHCLManifest(path)
	default:
		return nil, errcode.InvalidArgf("unsupported manifest format %q", ext)
	}
}

func readHCLManifest(path string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var parsed hclManifest
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	return parsed.manifest(), nil
}

// Load reads the manifest at path, fills in defaults and validates the result.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, builderrors.NewConfigurationError("manifest", "cannot resolve manifest path", err)
	}

	m, err := ReadManifest(abs)
	if err != nil {
		return nil, builderrors.NewConfigurationError("manifest", fmt.Sprintf("cannot load %s", path), err)
	}

	cfg := Resolve(m, filepath.Dir(abs))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Op.WithFields(map[string]interface{}{
		"manifest": abs,
		"name":     cfg.Name,
		"src":      cfg.Dirs.Src,
		"dist":     cfg.Dirs.Dist,
	}).Debug("Manifest loaded")
	return cfg, nil
}

// Resolve applies defaults to a parsed manifest rooted at root.
func Resolve(m *Manifest, root string) *Config {
	cfg := &Config{
		Root:          root,
		Name:          m.Name,
		Homepage:      m.Homepage,
		JQueryVersion: m.DevDependencies["jquery"],
		Dirs:          m.Scaffold.Directories,
	}

	s := m.Sitebuild
	if s == nil {
		s = new(Settings)
	}
	cfg.JQueryPath = s.JQueryPath
	cfg.HtaccessPath = s.HtaccessPath
	cfg.LicensePath = s.LicensePath
	cfg.MainStylesheet = s.MainStylesheet
	cfg.MainScript = s.MainScript
	cfg.Author = s.Author
	cfg.LintTargets = s.LintTargets
	cfg.ArchiveFormat = ArchiveExt(s.ArchiveFormat)
	cfg.Concurrency = s.Concurrency
	cfg.Tools = s.Tools

	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&cfg.Dirs.Archive, "archive")
	def(&cfg.Dirs.Dist, "dist")
	def(&cfg.Dirs.Src, "src")
	def(&cfg.Dirs.Test, "test")
	def(&cfg.JQueryPath, "node_modules/jquery/dist/jquery.min.js")
	def(&cfg.HtaccessPath, "node_modules/apache-server-configs/dist/.htaccess")
	def(&cfg.LicensePath, "LICENSE.txt")
	def(&cfg.MainStylesheet, DefaultMainStylesheet)
	def(&cfg.MainScript, DefaultMainScript)
	def(&cfg.Author, DefaultAuthor)
	def(&cfg.ArchiveFormat, DefaultArchiveFormat)

	if cfg.LintTargets == nil {
		cfg.LintTargets = []string{"gulpfile.js", cfg.Dirs.Src + "/js/plugin*.js"}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
}

var archiveFormats = map[string]bool{
	"zip":    true,
	"tar.gz": true,
	"tar.xz": true,
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if c.Name == "" {
		return builderrors.NewConfigurationError("name", "project name is required", nil)
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return builderrors.NewConfigurationError("name", fmt.Sprintf("project name %q must not contain path separators", c.Name), nil)
	}
	if !archiveFormats[c.ArchiveFormat] {
		return builderrors.NewConfigurationError("archiveFormat",
			fmt.Sprintf("unsupported archive format %q (want zip, tar.gz or tar.xz)", c.ArchiveFormat), nil)
	}

	dirs := map[string]string{
		"archive": c.Dirs.Archive,
		"dist":    c.Dirs.Dist,
		"src":     c.Dirs.Src,
	}
	for role, dir := range dirs {
		clean := filepath.Clean(dir)
		if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return builderrors.NewConfigurationError("directories."+role,
				fmt.Sprintf("directory %q must be inside the project root", dir), nil)
		}
	}
	if filepath.Clean(c.Dirs.Dist) == filepath.Clean(c.Dirs.Src) {
		return builderrors.NewConfigurationError("directories.dist", "destination must differ from source", nil)
	}
	if filepath.Clean(c.Dirs.Archive) == filepath.Clean(c.Dirs.Src) {
		return builderrors.NewConfigurationError("directories.archive", "archive output must differ from source", nil)
	}
	return nil
}
