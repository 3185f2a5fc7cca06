package orchestrator

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/maxkimambo/sitebuild/internal/archive"
	"github.com/maxkimambo/sitebuild/internal/cleaner"
	"github.com/maxkimambo/sitebuild/internal/config"
	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/fileset"
	"github.com/maxkimambo/sitebuild/internal/logger"
	tm "github.com/maxkimambo/sitebuild/internal/taskmanager"
	"github.com/maxkimambo/sitebuild/internal/transform"
)

// Task names registered by the site build.
const (
	TaskClean            = "clean"
	TaskLintJS           = "lint:js"
	TaskCopyHtaccess     = "copy:.htaccess"
	TaskCopyIndexHTML    = "copy:index.html"
	TaskCopyJQuery       = "copy:jquery"
	TaskCopyLicense      = "copy:license"
	TaskCopyMinifyCSS    = "copy:minify-css"
	TaskCopyUglify       = "copy:uglify"
	TaskCopyImages       = "copy:images"
	TaskCopyMisc         = "copy:misc"
	TaskCopy             = "copy"
	TaskBuild            = "build"
	TaskDefault          = "default"
	TaskCreateArchiveDir = "archive:create_archive_dir"
	TaskArchiveZip       = "archive:zip"
	TaskArchive          = "archive"
)

// CopyTasks lists the members of the copy group.
var CopyTasks = []string{
	TaskCopyUglify,
	TaskCopyHtaccess,
	TaskCopyIndexHTML,
	TaskCopyJQuery,
	TaskCopyLicense,
	TaskCopyImages,
	TaskCopyMinifyCSS,
	TaskCopyMisc,
}

// TaskFactory creates the tasks of the site build from a resolved config.
type TaskFactory struct {
	config      *config.Config
	out         io.Writer
	concurrency int
}

// NewTaskFactory creates a new task factory. Reports go to out.
func NewTaskFactory(cfg *config.Config, out io.Writer, concurrency int) *TaskFactory {
	if out == nil {
		out = os.Stdout
	}
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}
	return &TaskFactory{
		config:      cfg,
		out:         out,
		concurrency: concurrency,
	}
}

// CreateAll returns every task of the site build.
func (f *TaskFactory) CreateAll() []*tm.Task {
	return []*tm.Task{
		f.CreateCleanTask(),
		f.CreateLintTask(),
		f.CreateHtaccessTask(),
		f.CreateIndexHTMLTask(),
		f.CreateJQueryTask(),
		f.CreateLicenseTask(),
		f.CreateMinifyCSSTask(),
		f.CreateUglifyTask(),
		f.CreateImagesTask(),
		f.CreateMiscTask(),
		f.CreateCopyTask(),
		f.CreateBuildTask(),
		f.CreateDefaultTask(),
		f.CreateArchiveDirTask(),
		f.CreateArchiveZipTask(),
		f.CreateArchiveTask(),
	}
}

// CreateCleanTask removes the archive and destination directories.
func (f *TaskFactory) CreateCleanTask() *tm.Task {
	c := cleaner.New(f.config.Root, f.config.SrcDir())
	return &tm.Task{
		Name:        TaskClean,
		Description: "Remove the archive and destination directories",
		Action: func(ctx context.Context) error {
			return c.Clean(ctx, f.config.ArchiveDir(), f.config.DistDir())
		},
	}
}

// CreateLintTask checks the configured scripts and fails on any violation.
func (f *TaskFactory) CreateLintTask() *tm.Task {
	l := &transform.Linter{
		Files:    fileset.New(f.config.Root, f.config.LintTargets...),
		External: f.tool(f.config.Tools.Linter),
		Out:      f.out,
	}
	return &tm.Task{
		Name:        TaskLintJS,
		Description: "Lint the build scripts",
		Action:      l.Run,
	}
}

// CreateHtaccessTask copies the server config, enabling the error
// documents and commenting out the MultiViews option.
func (f *TaskFactory) CreateHtaccessTask() *tm.Task {
	return f.stepTask(TaskCopyHtaccess, "Copy the server config into the destination",
		&transform.Step{
			Files: f.single(f.config.HtaccessPath),
			Transform: transform.Substitute(
				transform.NewRule(`# ErrorDocument`, "ErrorDocument"),
				transform.NewRule(`Options -MultiViews`, "# Options -MultiViews"),
			),
			Dest: f.config.DistDir(),
		})
}

// CreateIndexHTMLTask fills the page placeholders and strips cut blocks.
func (f *TaskFactory) CreateIndexHTMLTask() *tm.Task {
	rules := transform.PlaceholderRules(f.config.Placeholders())
	rules = append(rules, transform.CutBlockRule())
	return f.stepTask(TaskCopyIndexHTML, "Fill placeholders in index.html",
		&transform.Step{
			Files:     fileset.New(f.config.SrcDir(), "index.html"),
			Transform: transform.Substitute(rules...),
			Dest:      f.config.DistDir(),
		})
}

// CreateJQueryTask copies the vendored library under its versioned name.
func (f *TaskFactory) CreateJQueryTask() *tm.Task {
	return f.stepTask(TaskCopyJQuery, "Copy the vendored jQuery build",
		&transform.Step{
			Files:     f.single(f.config.JQueryPath),
			Transform: transform.RenameTo("jquery-" + f.config.JQueryVersion + ".min.js"),
			Dest:      filepath.Join(f.config.DistDir(), "js", "vendor"),
		})
}

// CreateLicenseTask copies the license file verbatim.
func (f *TaskFactory) CreateLicenseTask() *tm.Task {
	return f.stepTask(TaskCopyLicense, "Copy the license",
		&transform.Step{
			Files:     f.single(f.config.LicensePath),
			Transform: transform.Copy(),
			Dest:      f.config.DistDir(),
		})
}

// CreateMinifyCSSTask minifies the main stylesheet, prepends the banner
// and writes it with a .min suffix.
func (f *TaskFactory) CreateMinifyCSSTask() *tm.Task {
	return f.stepTask(TaskCopyMinifyCSS, "Minify the main stylesheet",
		&transform.Step{
			Files: fileset.New(f.config.SrcDir(), f.config.MainStylesheetFile()),
			Transform: transform.Chain(
				transform.Minify(transform.MediaCSS),
				transform.Header(f.config.Banner()),
				transform.Suffix(".min"),
			),
			Dest: filepath.Join(f.config.DistDir(), "css"),
		})
}

// CreateUglifyTask bundles the asset scripts into the page script.
func (f *TaskFactory) CreateUglifyTask() *tm.Task {
	b := &transform.Bundle{
		Name: TaskCopyUglify,
		Files: fileset.New(f.config.SrcDir(),
			".assets/js/*.*",
			"!.assets/js/"+f.config.MainScript+".js",
		).WithDot(),
		Output: filepath.Join(f.config.DistDir(), filepath.FromSlash(f.config.MainScriptFile())),
		Minify: true,
	}
	return &tm.Task{
		Name:        TaskCopyUglify,
		Description: "Bundle and minify the asset scripts",
		Action:      b.Run,
	}
}

// CreateImagesTask recompresses every image below img/.
func (f *TaskFactory) CreateImagesTask() *tm.Task {
	return f.stepTask(TaskCopyImages, "Compress images",
		&transform.Step{
			Files:     fileset.New(f.config.SrcDir(), "img/**/*.{gif,jpg,jpeg,png,svg}"),
			Transform: transform.CompressImage(transform.ImageOptions{External: f.tool(f.config.Tools.ImageCompressor)}),
			Dest:      filepath.Join(f.config.DistDir(), "img"),
		})
}

// CreateMiscTask copies everything the other copy tasks do not handle.
// Hidden files are left out.
func (f *TaskFactory) CreateMiscTask() *tm.Task {
	return f.stepTask(TaskCopyMisc, "Copy remaining source files",
		&transform.Step{
			Files: fileset.New(f.config.SrcDir(),
				"**/*",
				"!"+f.config.MainStylesheetFile(),
				"!.assets/**",
				"!img/**",
				"!"+f.config.MainScriptFile(),
				"!index.html",
			),
			Transform: transform.Copy(),
			Dest:      f.config.DistDir(),
		})
}

// CreateCopyTask runs every copy step concurrently.
func (f *TaskFactory) CreateCopyTask() *tm.Task {
	return &tm.Task{
		Name:        TaskCopy,
		Description: "Run all copy steps",
		DependsOn:   tm.Sequence{tm.ParallelTasks(CopyTasks...)},
	}
}

// CreateBuildTask cleans and lints in parallel, then copies.
func (f *TaskFactory) CreateBuildTask() *tm.Task {
	return &tm.Task{
		Name:        TaskBuild,
		Description: "Clean, lint and build the destination tree",
		DependsOn: tm.Sequence{
			tm.ParallelTasks(TaskClean, TaskLintJS),
			tm.Single(TaskCopy),
		},
	}
}

// CreateDefaultTask is an alias of build.
func (f *TaskFactory) CreateDefaultTask() *tm.Task {
	return &tm.Task{
		Name:        TaskDefault,
		Description: "Alias of build",
		DependsOn:   tm.Series(TaskBuild),
	}
}

// CreateArchiveDirTask creates the archive directory.
func (f *TaskFactory) CreateArchiveDirTask() *tm.Task {
	dir := f.config.ArchiveDir()
	return &tm.Task{
		Name:        TaskCreateArchiveDir,
		Description: "Create the archive directory",
		Action: func(ctx context.Context) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return builderrors.NewFileSystemError(dir, "Create archive directory", err)
			}
			return nil
		},
	}
}

// CreateArchiveZipTask packs the destination tree.
func (f *TaskFactory) CreateArchiveZipTask() *tm.Task {
	src, dst := f.config.DistDir(), f.config.ArchivePath()
	return &tm.Task{
		Name:        TaskArchiveZip,
		Description: "Pack the destination tree into " + filepath.Base(dst),
		Action: func(ctx context.Context) error {
			if err := archive.Create(ctx, src, dst); err != nil {
				return err
			}
			logger.User.Archivef("Created %s", dst)
			return nil
		},
	}
}

// CreateArchiveTask builds, then archives.
func (f *TaskFactory) CreateArchiveTask() *tm.Task {
	return &tm.Task{
		Name:        TaskArchive,
		Description: "Build and archive the site",
		DependsOn:   tm.Series(TaskBuild, TaskCreateArchiveDir, TaskArchiveZip),
	}
}

func (f *TaskFactory) stepTask(name, description string, s *transform.Step) *tm.Task {
	s.Name = name
	s.Concurrency = f.concurrency
	return &tm.Task{
		Name:        name,
		Description: description,
		Action:      s.Action(),
	}
}

// single matches exactly one project file, hidden or not. Absolute paths
// are rooted at their own directory.
func (f *TaskFactory) single(rel string) *fileset.FileSet {
	p := f.config.Path(rel)
	return fileset.New(filepath.Dir(p), filepath.Base(p)).WithDot()
}

func (f *TaskFactory) tool(command []string) *transform.Tool {
	if len(command) == 0 {
		return nil
	}
	return &transform.Tool{Command: command}
}
