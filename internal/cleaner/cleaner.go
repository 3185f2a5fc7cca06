// Package cleaner removes build output directories.
package cleaner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

// Cleaner deletes generated trees. Protected paths, and every directory
// containing one of them, are never removed.
type Cleaner struct {
	protected []string
}

// New creates a cleaner that refuses to remove any of protect or their
// ancestors. The working directory is always protected.
func New(protect ...string) *Cleaner {
	c := &Cleaner{}
	if wd, err := os.Getwd(); err == nil {
		c.protected = append(c.protected, wd)
	}
	for _, p := range protect {
		if abs, err := filepath.Abs(p); err == nil {
			c.protected = append(c.protected, abs)
		}
	}
	return c
}

// Clean removes each path recursively. Missing paths are not an error.
// Symlinks are removed, not followed.
func (c *Cleaner) Clean(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.check(p); err != nil {
			return err
		}
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			logger.Op.WithFields(map[string]interface{}{"path": p}).Debug("Nothing to clean")
			continue
		}
		if err := os.RemoveAll(p); err != nil {
			return builderrors.NewFileSystemError(p, "Remove directory", err)
		}
		logger.User.Cleanupf("Removed %s", p)
	}
	return nil
}

func (c *Cleaner) check(p string) error {
	if strings.TrimSpace(p) == "" {
		return refuse(p, "empty path")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return builderrors.NewFileSystemError(p, "Resolve path", err)
	}
	if abs == filepath.VolumeName(abs)+string(filepath.Separator) {
		return refuse(p, "filesystem root")
	}
	for _, prot := range c.protected {
		if within(prot, abs) {
			return refuse(p, fmt.Sprintf("contains protected directory %s", prot))
		}
	}
	return nil
}

// within reports whether child is dir or lies below it.
func within(child, dir string) bool {
	rel, err := filepath.Rel(dir, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func refuse(p, reason string) error {
	return builderrors.NewFileSystemError(p, "Clean",
		fmt.Errorf("refusing to remove %q: %s", p, reason))
}
