package fileset

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"shanhu.io/misc/errcode"
)

// File is one match of a FileSet.
type File struct {
	// Path is the file's location on disk.
	Path string
	// Rel is the slash-separated path below the glob base of the pattern
	// that matched it. Destinations are computed from Rel.
	Rel string
	// Pattern is the positive pattern that matched the file.
	Pattern string
}

// FileSet is an ordered list of glob patterns relative to Root. Patterns
// prefixed with "!" remove earlier matches. Nothing is cached: every call to
// Resolve walks the live tree.
type FileSet struct {
	Root     string
	Patterns []string
	// Dot lets wildcards match hidden files and directories.
	Dot bool
}

// New creates a file set rooted at root.
func New(root string, patterns ...string) *FileSet {
	return &FileSet{Root: root, Patterns: patterns}
}

// WithDot returns a copy of the set that matches hidden files.
func (s *FileSet) WithDot() *FileSet {
	c := *s
	c.Dot = true
	return &c
}

// Resolve evaluates the patterns in order against the current tree.
func (s *FileSet) Resolve() ([]File, error) {
	opts := []doublestar.GlobOption{doublestar.WithFilesOnly()}
	if !s.Dot {
		opts = append(opts, doublestar.WithNoHidden())
	}
	fsys := os.DirFS(s.Root)

	var files []File
	seen := make(map[string]bool)

	for _, p := range s.Patterns {
		if exclude, ok := strings.CutPrefix(p, "!"); ok {
			exclude = cleanPattern(exclude)
			if !doublestar.ValidatePattern(exclude) {
				return nil, errcode.InvalidArgf("bad glob pattern %q", p)
			}
			kept := files[:0]
			for _, f := range files {
				name := strings.TrimPrefix(relTo(s.Root, f.Path), "./")
				if doublestar.MatchUnvalidated(exclude, name) {
					delete(seen, f.Path)
					continue
				}
				kept = append(kept, f)
			}
			files = kept
			continue
		}

		p = cleanPattern(p)
		matches, err := doublestar.Glob(fsys, p, opts...)
		if err != nil {
			return nil, errcode.Annotatef(err, "glob %q", p)
		}
		sort.Strings(matches)

		base, _ := doublestar.SplitPattern(p)
		for _, m := range matches {
			full := filepath.Join(s.Root, filepath.FromSlash(m))
			if seen[full] {
				continue
			}
			seen[full] = true
			files = append(files, File{
				Path:    full,
				Rel:     relBase(base, m),
				Pattern: p,
			})
		}
	}
	return files, nil
}

// Paths returns the on-disk paths of the resolved files.
func (s *FileSet) Paths() ([]string, error) {
	files, err := s.Resolve()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths, nil
}

func cleanPattern(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return p
}

func relBase(base, match string) string {
	if base == "." || base == "" {
		return match
	}
	return strings.TrimPrefix(strings.TrimPrefix(match, base), "/")
}

func relTo(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return path.Clean(filepath.ToSlash(rel))
}
