package fileio

import (
	"os"
	"path/filepath"
)

// CreateFile creates or truncates path, making its parent directories when needed.
func CreateFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err == nil {
		return f, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}
	return os.Create(path)
}
