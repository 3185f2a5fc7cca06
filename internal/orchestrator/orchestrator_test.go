package orchestrator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxkimambo/sitebuild/internal/archive"
	"github.com/maxkimambo/sitebuild/internal/config"
	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	tm "github.com/maxkimambo/sitebuild/internal/taskmanager"
)

const manifest = `{
  "name": "site",
  "homepage": "https://example.com",
  "devDependencies": {"jquery": "2.1.4"},
  "scaffold-config": {
    "directories": {"archive": "archive", "dist": "dist", "src": "src", "test": "test"}
  }
}
`

const indexHTML = `<script src="js/vendor/jquery-{{JQUERY_VERSION}}.min.js"></script>
<link rel="stylesheet" href="css/{{MAIN_CSS_FILE}}">
{{CUT-START}}
<script src="js/dev-only.js"></script>
{{CUT-END}}
<script src="js/{{MAIN_JS_FILE}}"></script>
`

// newProject lays out a small site project and returns its loaded config.
func newProject(t *testing.T, gulpfile string) *config.Config {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"package.json":                                      manifest,
		"LICENSE.txt":                                       "MIT\n",
		"gulpfile.js":                                       gulpfile,
		"node_modules/jquery/dist/jquery.min.js":            "/*! jQuery v2.1.4 */",
		"node_modules/apache-server-configs/dist/.htaccess": "# ErrorDocument 404 /404.html\nOptions -MultiViews\n",
		"src/index.html":                                    indexHTML,
		"src/robots.txt":                                    "User-agent: *\n",
		"src/.hidden":                                       "secret",
		"src/css/styles.css":                                "a {\n  color: red;\n}\n",
		"src/css/print.css":                                 "body { color: black; }\n",
		"src/js/main.js":                                    "var pageScript = true;\n",
		"src/js/plugins.js":                                 "var plugins = [];\n",
		"src/.assets/js/a.js":                               "var first = 1;\n",
		"src/.assets/js/b.js":                               "var second = 2;\n",
		"src/.assets/js/main.js":                            "var excludedEntry = 3;\n",
		"dist/stale.txt":                                    "left over",
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < 16; i++ {
		img.Set(i, i, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "img", "icons"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "img", "icons", "logo.png"), buf.Bytes(), 0o644))

	cfg, err := config.Load(filepath.Join(root, "package.json"))
	require.NoError(t, err)
	return cfg
}

func readDist(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.DistDir(), filepath.FromSlash(rel)))
	require.NoError(t, err, rel)
	return string(data)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestNew_RegistersSiteGraph(t *testing.T) {
	o, err := New(newProject(t, "var ok = true;\n"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"archive", "archive:create_archive_dir", "archive:zip", "build", "clean",
		"copy", "copy:.htaccess", "copy:images", "copy:index.html", "copy:jquery",
		"copy:license", "copy:minify-css", "copy:misc", "copy:uglify", "default", "lint:js",
	}, o.Registry().Names())

	build, err := o.Registry().Resolve(TaskBuild)
	require.NoError(t, err)
	assert.Equal(t, "[clean lint:js] -> copy", tm.DescribeSequence(build.DependsOn))
	assert.Nil(t, build.Action)

	archiveTask, err := o.Registry().Resolve(TaskArchive)
	require.NoError(t, err)
	assert.Equal(t, "build -> archive:create_archive_dir -> archive:zip", tm.DescribeSequence(archiveTask.DependsOn))

	copyTask, err := o.Registry().Resolve(TaskCopy)
	require.NoError(t, err)
	require.Len(t, copyTask.DependsOn, 1)
	assert.Equal(t, tm.StepParallel, copyTask.DependsOn[0].Kind)
	assert.ElementsMatch(t, CopyTasks, copyTask.DependsOn.TaskNames())

	plan, err := o.Plan(TaskDefault)
	require.NoError(t, err)
	assert.Equal(t, TaskDefault, plan[len(plan)-1])
	assert.Len(t, plan, 13)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestExecuteTarget_Build(t *testing.T) {
	cfg := newProject(t, "var ok = true;\n")
	o, err := New(cfg, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	result, err := o.ExecuteTarget(context.Background(), TaskDefault)
	require.NoError(t, err)
	assert.True(t, result.Success)
	completed, failed, cancelled := result.Counts()
	assert.Equal(t, 13, completed)
	assert.Zero(t, failed)
	assert.Zero(t, cancelled)

	// clean ran before copy
	assert.False(t, exists(filepath.Join(cfg.DistDir(), "stale.txt")))

	index := readDist(t, cfg, "index.html")
	assert.Contains(t, index, "js/vendor/jquery-2.1.4.min.js")
	assert.Contains(t, index, `href="css/styles.min.css"`)
	assert.Contains(t, index, `src="js/main.js"`)
	assert.NotContains(t, index, "dev-only")
	assert.NotContains(t, index, "{{")

	assert.Equal(t, "ErrorDocument 404 /404.html\n# Options -MultiViews\n", readDist(t, cfg, ".htaccess"))
	assert.Equal(t, "/*! jQuery v2.1.4 */", readDist(t, cfg, "js/vendor/jquery-2.1.4.min.js"))
	assert.Equal(t, "MIT\n", readDist(t, cfg, "LICENSE.txt"))

	css := readDist(t, cfg, "css/styles.min.css")
	assert.True(t, strings.HasPrefix(css, cfg.Banner()))
	assert.True(t, strings.HasSuffix(css, "a{color:red}"))
	assert.False(t, exists(filepath.Join(cfg.DistDir(), "css", "styles.css")))

	bundle := readDist(t, cfg, "js/main.js")
	assert.Contains(t, bundle, "first")
	assert.Contains(t, bundle, "second")
	assert.NotContains(t, bundle, "excludedEntry")
	assert.NotContains(t, bundle, "pageScript")

	assert.True(t, exists(filepath.Join(cfg.DistDir(), "img", "icons", "logo.png")))

	// misc
	assert.Equal(t, "User-agent: *\n", readDist(t, cfg, "robots.txt"))
	assert.True(t, exists(filepath.Join(cfg.DistDir(), "css", "print.css")))
	assert.True(t, exists(filepath.Join(cfg.DistDir(), "js", "plugins.js")))
	assert.False(t, exists(filepath.Join(cfg.DistDir(), ".hidden")))
	assert.False(t, exists(filepath.Join(cfg.DistDir(), ".assets")))
}

func TestExecuteTarget_LintFailureStopsCopy(t *testing.T) {
	cfg := newProject(t, "debugger;\n")
	var report bytes.Buffer
	o, err := New(cfg, Options{Out: &report})
	require.NoError(t, err)

	result, err := o.ExecuteTarget(context.Background(), TaskBuild)
	require.Error(t, err)
	assert.True(t, builderrors.IsLintViolation(err))
	assert.False(t, result.Success)

	assert.Equal(t, tm.StatusFailed, result.Tasks[TaskLintJS].Status)
	for _, name := range CopyTasks {
		if tr, ok := result.Tasks[name]; ok {
			assert.NotEqual(t, tm.StatusCompleted, tr.Status, name)
		}
	}
	assert.False(t, exists(filepath.Join(cfg.DistDir(), "index.html")))
	assert.Contains(t, report.String(), "gulpfile.js")
	assert.Contains(t, report.String(), "no-debugger")

	summary := Summary(result)
	assert.Contains(t, summary, "build failed")
	assert.Contains(t, summary, "lint:js")
}

func TestExecuteTarget_Archive(t *testing.T) {
	cfg := newProject(t, "var ok = true;\n")
	o, err := New(cfg, Options{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	_, err = o.ExecuteTarget(context.Background(), TaskArchive)
	require.NoError(t, err)

	info, err := os.Stat(cfg.ArchiveDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := archive.List(cfg.ArchivePath())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, ".htaccess")
	assert.Contains(t, names, "index.html")
	assert.Contains(t, names, "img/icons/logo.png")
	assert.Contains(t, names, "js/vendor/jquery-2.1.4.min.js")

	// A second archive run replaces the first.
	_, err = o.ExecuteTarget(context.Background(), TaskArchive)
	require.NoError(t, err)
}

func TestExecuteTarget_UnknownTarget(t *testing.T) {
	o, err := New(newProject(t, "var ok = true;\n"), Options{})
	require.NoError(t, err)

	_, err = o.ExecuteTarget(context.Background(), "deploy")
	assert.True(t, builderrors.IsUnknownTask(err))
}

func TestVisualize(t *testing.T) {
	o, err := New(newProject(t, "var ok = true;\n"), Options{})
	require.NoError(t, err)

	text, err := o.Visualize(TaskBuild, "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "build\n"))
	assert.Contains(t, text, "copy:misc")

	js, err := o.Visualize(TaskBuild, "json")
	require.NoError(t, err)
	assert.Contains(t, js, `"target": "build"`)

	dot, err := o.Visualize(TaskArchive, "dot")
	require.NoError(t, err)
	assert.Contains(t, dot, `"archive" -> "archive:zip"`)

	_, err = o.Visualize(TaskBuild, "svg")
	assert.Error(t, err)
}

func TestTaskTable(t *testing.T) {
	o, err := New(newProject(t, "var ok = true;\n"), Options{})
	require.NoError(t, err)

	table := o.TaskTable()
	assert.Contains(t, table, "archive:create_archive_dir")
	assert.Contains(t, table, "[clean lint:js] -> copy")
	assert.Equal(t, o.Registry().Len()+4, strings.Count(table, "\n"))
}
