// Package bundle writes customized template files as a zip archive or a
// directory tree.
package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// File is one output file. Path is slash-separated and relative.
type File struct {
	Path string
	Data []byte
}

// modTime is stamped on every archive entry so identical inputs produce
// identical archives.
var modTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

func sorted(files []File) ([]File, error) {
	out := make([]File, len(files))
	copy(out, files)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	for i, f := range out {
		if !validPath(f.Path) {
			return nil, fmt.Errorf("invalid bundle path %q", f.Path)
		}
		if i > 0 && out[i-1].Path == f.Path {
			return nil, fmt.Errorf("duplicate bundle path %q", f.Path)
		}
	}
	return out, nil
}

func validPath(p string) bool {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return false
	}
	c := path.Clean(p)
	return c == p && c != ".." && !strings.HasPrefix(c, "../")
}

// WriteZip writes files to w as a zip archive, ordered by path.
func WriteZip(w io.Writer, files []File) error {
	ordered, err := sorted(files)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	for _, f := range ordered {
		hdr := &zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: modTime,
		}
		hdr.SetMode(0o644)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("zip %s: %w", f.Path, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("zip %s: %w", f.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

// WriteDir writes files below dir, creating directories as needed.
func WriteDir(dir string, files []File) error {
	ordered, err := sorted(files)
	if err != nil {
		return err
	}
	for _, f := range ordered {
		dst := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(dst, f.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return nil
}
