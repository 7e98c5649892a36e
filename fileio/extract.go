package fileio

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsafePath = errors.New("path escapes destination")

// SafeJoin joins a slash separated archive path onto root, rejecting absolute paths and
// paths that would resolve outside root.
func SafeJoin(root string, rel string) (string, error) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	dest := filepath.Join(root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(root, dest)
	if err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, rel)
	}
	return dest, nil
}

// ExtractZip unpacks archive into dest. Returns the number of files written.
func ExtractZip(archive string, dest string) (int, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return 0, err
	}
	defer zr.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for _, f := range zr.File {
		target, err := SafeJoin(dest, f.Name)
		if err != nil {
			return written, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return written, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		written++
	}
	return written, nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := CreateFile(target)
	if err != nil {
		return err
	}
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(out, rc, buf); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
