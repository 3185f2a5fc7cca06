package archive

import (
	"archive/tar"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz"
	"shanhu.io/misc/errcode"
)

// List returns the file entries stored in an archive, in archive order.
func List(path string) ([]*Entry, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatZip {
		return listZip(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errcode.Annotate(err, "open archive")
	}
	defer f.Close()

	var r io.Reader
	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errcode.Annotate(err, "open gzip")
		}
		defer gz.Close()
		r = gz
	case FormatTarXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errcode.Annotate(err, "open xz")
		}
		r = xr
	}
	return listTar(r)
}

func listZip(path string) ([]*Entry, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errcode.Annotate(err, "open zip")
	}
	defer zr.Close()

	var entries []*Entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, &Entry{
			Name: f.Name,
			Mode: f.Mode().Perm(),
			Size: int64(f.UncompressedSize64),
		})
	}
	return entries, nil
}

func listTar(r io.Reader) ([]*Entry, error) {
	tr := tar.NewReader(r)
	var entries []*Entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, errcode.Annotate(err, "read tar")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		entries = append(entries, &Entry{
			Name: hdr.Name,
			Mode: os.FileMode(hdr.Mode).Perm(),
			Size: hdr.Size,
		})
	}
}

// ReadFile returns the content of one archived file.
func ReadFile(path, name string) ([]byte, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == FormatZip {
		zr, err := zip.OpenReader(path)
		if err != nil {
			return nil, errcode.Annotate(err, "open zip")
		}
		defer zr.Close()
		for _, f := range zr.File {
			if f.Name != name {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
		return nil, errcode.NotFoundf("%q not in archive", name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errcode.Annotate(err, "open archive")
	}
	defer f.Close()

	var r io.Reader = f
	if format == FormatTarGz {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errcode.Annotate(err, "open gzip")
		}
		defer gz.Close()
		r = gz
	} else {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, errcode.Annotate(err, "open xz")
		}
		r = xr
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, errcode.NotFoundf("%q not in archive", name)
		}
		if err != nil {
			return nil, errcode.Annotate(err, "read tar")
		}
		if hdr.Name == name {
			return io.ReadAll(tr)
		}
	}
}
