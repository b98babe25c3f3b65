// Package archive packages rendered artifacts into a zip archive. The
// archive bytes depend only on the artifacts: entries are written in path
// order with a fixed modification time.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"path"
	"slices"
	"time"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler/gen"
)

// ModTime is the modification time stamped on every entry.
var ModTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Package returns the zip archive of files. It fails with a
// *tablegen.PackagingError when two files share a path or a path is not a
// clean relative path.
func Package(files gen.Files) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the zip archive of files to w.
func Write(w io.Writer, files gen.Files) error {
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(a, b gen.File) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	for i, f := range sorted {
		if f.Path == "" || !fs.ValidPath(f.Path) || path.Clean(f.Path) != f.Path {
			return tablegen.NewPackagingError(f.Path, "invalid archive path", nil)
		}
		if i > 0 && sorted[i-1].Path == f.Path {
			return tablegen.NewPackagingError(f.Path,
				"artifacts "+string(sorted[i-1].Kind)+" and "+string(f.Kind)+" resolve to the same path", nil)
		}
	}
	zw := zip.NewWriter(w)
	for _, f := range sorted {
		hdr := &zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: ModTime,
		}
		hdr.SetMode(0o644)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return tablegen.NewPackagingError(f.Path, "create entry", err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return tablegen.NewPackagingError(f.Path, "write entry", err)
		}
	}
	if err := zw.Close(); err != nil {
		return tablegen.NewPackagingError("", "close archive", err)
	}
	return nil
}

// Merge concatenates the files of several generation results, as for a
// batch archive. Duplicate paths are reported by Package.
func Merge(results ...gen.Files) gen.Files {
	var all gen.Files
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

// Read returns the entries of a zip archive keyed by path.
func Read(b []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		out[f.Name] = data
	}
	return out, nil
}
