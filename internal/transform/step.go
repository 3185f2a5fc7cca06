package transform

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/fileset"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

// DefaultConcurrency bounds the per-file worker pool of a step.
const DefaultConcurrency = 4

// Step reads every file of a file set, applies one transformation and
// writes the result below Dest. Files are processed concurrently; each file
// is read, transformed and written in order.
type Step struct {
	Name        string
	Files       *fileset.FileSet
	Transform   Func
	Dest        string
	Concurrency int
}

// StepResult summarizes a finished step.
type StepResult struct {
	Files   int
	Written []string
}

// Run executes the step. A file set matching nothing is not an error.
func (s *Step) Run(ctx context.Context) (*StepResult, error) {
	files, err := s.Files.Resolve()
	if err != nil {
		return nil, builderrors.NewFileSystemError(s.Files.Root, "Resolve file set", err)
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	written := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			out, err := s.processFile(gctx, f)
			if err != nil {
				return err
			}
			written[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(written)
	logger.Op.WithFields(map[string]interface{}{
		"step":  s.Name,
		"files": len(files),
		"dest":  s.Dest,
	}).Debug("Step finished")
	return &StepResult{Files: len(files), Written: written}, nil
}

// Action adapts the step to the task completion contract.
func (s *Step) Action() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		res, err := s.Run(ctx)
		if err != nil {
			return err
		}
		logger.User.Copyf("%s: %d file(s) -> %s", s.Name, res.Files, s.Dest)
		return nil
	}
}

func (s *Step) processFile(ctx context.Context, f fileset.File) (string, error) {
	c, err := ReadContent(f.Path, f.Rel)
	if err != nil {
		return "", err
	}
	if s.Transform != nil {
		if err := s.Transform(ctx, c); err != nil {
			if _, ok := builderrors.AsBuildError(err); ok {
				return "", err
			}
			return "", builderrors.NewFileSystemError(f.Path, "Transform "+s.Name, err)
		}
	}
	return WriteContent(s.Dest, c)
}

// ReadContent loads a file with its permission bits.
func ReadContent(path, rel string) (*Content, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, builderrors.NewFileSystemError(path, "Stat source file", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, builderrors.NewFileSystemError(path, "Read source file", err)
	}
	return &Content{Src: path, Rel: rel, Data: data, Mode: info.Mode().Perm()}, nil
}

// WriteContent writes c below dest, creating parent directories, and
// returns the written path. The file is written to a temporary name in the
// same directory and renamed into place, so readers never see a partial file.
func WriteContent(dest string, c *Content) (string, error) {
	out := filepath.Join(dest, filepath.FromSlash(c.Rel))
	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", builderrors.NewFileSystemError(dir, "Create destination directory", err)
	}
	mode := c.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(out)+".*.tmp")
	if err != nil {
		return "", builderrors.NewFileSystemError(out, "Create temporary file", err)
	}
	tmpName := tmp.Name()
	if err := writeAndClose(tmp, c.Data, mode); err != nil {
		os.Remove(tmpName)
		return "", builderrors.NewFileSystemError(out, "Write destination file", err)
	}
	if err := os.Rename(tmpName, out); err != nil {
		os.Remove(tmpName)
		return "", builderrors.NewFileSystemError(out, "Rename destination file", err)
	}
	return out, nil
}

// writeAndClose writes data and sets mode, which CreateTemp fixes at 0600.
func writeAndClose(f *os.File, data []byte, mode os.FileMode) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Bundle concatenates every matched script in sorted path order, minifies
// the result and writes it to Output.
type Bundle struct {
	Name   string
	Files  *fileset.FileSet
	Output string
	// Minify may be disabled to emit the plain concatenation.
	Minify bool
}

// Run executes the bundle. No matching input writes nothing.
func (b *Bundle) Run(ctx context.Context) error {
	files, err := b.Files.Resolve()
	if err != nil {
		return builderrors.NewFileSystemError(b.Files.Root, "Resolve file set", err)
	}
	if len(files) == 0 {
		logger.Op.WithFields(map[string]interface{}{"step": b.Name}).Debug("No scripts to bundle")
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	parts := make([][]byte, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return builderrors.NewFileSystemError(f.Path, "Read script", err)
		}
		parts = append(parts, data)
	}

	data := concatScripts(parts)
	if b.Minify {
		if data, err = MinifyBytes(MediaJS, data); err != nil {
			return builderrors.NewTransformToolError("minify", brokenScript(files, parts), err)
		}
	}

	c := &Content{Rel: filepath.Base(b.Output), Data: data, Mode: 0o644}
	if _, err := WriteContent(filepath.Dir(b.Output), c); err != nil {
		return err
	}
	logger.User.Minifyf("%s: %d script(s) -> %s", b.Name, len(files), b.Output)
	return nil
}

// brokenScript names the first input the minifier rejects on its own, or
// every input when only the concatenation fails.
func brokenScript(files []fileset.File, parts [][]byte) string {
	for i, p := range parts {
		if _, err := MinifyBytes(MediaJS, p); err != nil {
			return files[i].Path
		}
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return strings.Join(paths, ", ")
}
