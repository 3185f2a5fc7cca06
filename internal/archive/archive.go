// Package archive packs a destination tree into a single archive file.
package archive

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/tarutil"

	builderrors "github.com/maxkimambo/sitebuild/internal/errors"
	"github.com/maxkimambo/sitebuild/internal/logger"
)

// Format is an archive container format.
type Format string

// Supported formats.
const (
	FormatZip   Format = "zip"
	FormatTarGz Format = "tar.gz"
	FormatTarXz Format = "tar.xz"
)

// FormatOf picks the format from the archive file name.
func FormatOf(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return FormatTarXz, nil
	}
	return "", errcode.InvalidArgf("unsupported archive type %q", filepath.Base(path))
}

// Entry is one file in an archive.
type Entry struct {
	// Name is the slash-separated path relative to the archived tree.
	Name string
	Mode fs.FileMode
	Size int64
	path string
}

// Collect walks dir, hidden files included, and returns every regular
// file in walk order.
func Collect(dir string) ([]*Entry, error) {
	var entries []*Entry
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		entries = append(entries, &Entry{
			Name: filepath.ToSlash(rel),
			Mode: info.Mode().Perm(),
			Size: info.Size(),
			path: p,
		})
		return nil
	})
	if err != nil {
		return nil, errcode.Annotatef(err, "walk %s", dir)
	}
	return entries, nil
}

// Create packs every regular file below srcDir into archivePath. Files are
// added one by one with their permission bits. The archive is written to a
// temporary file next to archivePath and renamed into place on success;
// any failure removes it and returns an ArchiveWriteError.
func Create(ctx context.Context, srcDir, archivePath string) error {
	format, err := FormatOf(archivePath)
	if err != nil {
		return builderrors.NewArchiveWriteError(archivePath, err)
	}

	entries, err := Collect(srcDir)
	if err != nil {
		return builderrors.NewArchiveWriteError(archivePath, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(archivePath), "."+filepath.Base(archivePath)+".tmp-*")
	if err != nil {
		return builderrors.NewArchiveWriteError(archivePath, errcode.Annotate(err, "create temp file"))
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	switch format {
	case FormatZip:
		err = writeZip(ctx, tmp, entries)
	case FormatTarGz:
		err = writeTarGz(ctx, tmp, entries)
	case FormatTarXz:
		err = writeTarXz(ctx, tmp, entries)
	}
	if err != nil {
		return builderrors.NewArchiveWriteError(archivePath, err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		return builderrors.NewArchiveWriteError(archivePath, errcode.Annotate(err, "chmod archive"))
	}
	if err := tmp.Close(); err != nil {
		return builderrors.NewArchiveWriteError(archivePath, errcode.Annotate(err, "close archive"))
	}
	if err := os.Rename(tmpName, archivePath); err != nil {
		return builderrors.NewArchiveWriteError(archivePath, errcode.Annotate(err, "rename archive"))
	}
	committed = true

	logger.Op.WithFields(map[string]interface{}{
		"archive": archivePath,
		"format":  string(format),
		"files":   len(entries),
	}).Debug("Archive written")
	return nil
}

func writeZip(ctx context.Context, w io.Writer, entries []*Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := addZipEntry(zw, e); err != nil {
			return errcode.Annotatef(err, "add %s", e.Name)
		}
	}
	if err := zw.Close(); err != nil {
		return errcode.Annotate(err, "finish zip")
	}
	return nil
}

func addZipEntry(zw *zip.Writer, e *Entry) error {
	f, err := os.Open(e.path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr := &zip.FileHeader{
		Name:     e.Name,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	hdr.SetMode(e.Mode)

	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(fw, f)
	return err
}

func tarStream(entries []*Entry) *tarutil.Stream {
	ts := tarutil.NewStream()
	for _, e := range entries {
		ts.AddFile(e.Name, tarutil.ModeMeta(int64(e.Mode)&0777), e.path)
	}
	return ts
}

func writeTarGz(ctx context.Context, w io.Writer, entries []*Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := tarStream(entries).WriteTo(gz); err != nil {
		return errcode.Annotate(err, "write tar stream")
	}
	if err := gz.Close(); err != nil {
		return errcode.Annotate(err, "finish gzip")
	}
	return nil
}

func writeTarXz(ctx context.Context, w io.Writer, entries []*Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return errcode.Annotate(err, "create xz writer")
	}
	if _, err := tarStream(entries).WriteTo(xw); err != nil {
		return errcode.Annotate(err, "write tar stream")
	}
	if err := xw.Close(); err != nil {
		return errcode.Annotate(err, "finish xz")
	}
	return nil
}
