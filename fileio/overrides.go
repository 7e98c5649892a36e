package fileio

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyTree copies every regular file under src into dest, replacing existing files.
// Paths the matcher excludes are skipped. A missing src is not an error.
func CopyTree(src string, dest string, matcher *ClientOnlyMatcher) (copied int, skipped []string, err error) {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return 0, nil, nil
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matcher != nil && matcher.Excluded(rel+"/") {
				skipped = append(skipped, rel+"/")
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if matcher != nil && matcher.Excluded(rel) {
			skipped = append(skipped, rel)
			return nil
		}

		if err := copyFile(path, filepath.Join(dest, filepath.FromSlash(rel))); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, skipped, err
}

func copyFile(src string, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := CreateFile(dest)
	if err != nil {
		return err
	}
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
