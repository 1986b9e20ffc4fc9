// Package archive builds the zip payload uploaded by put.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// ErrNotDirectory is returned when the source of an archive is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Zip archives the tree rooted at srcDir into a new zip file at dst.
// Entry names are relative to srcDir and use forward slashes. A partially
// written dst is removed on failure.
func Zip(srcDir, dst string) (err error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, srcDir)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //#nosec G304 -- dst is built by the caller
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", closeErr)
		}
		if err != nil {
			if rmErr := os.Remove(dst); rmErr != nil {
				slog.Warn("failed to remove partial archive", "path", dst, "err", rmErr)
			}
		}
	}()

	zw := zip.NewWriter(out)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == srcDir {
			return nil
		}
		return addEntry(zw, srcDir, path, d)
	})
	if walkErr != nil {
		_ = zw.Close()
		return fmt.Errorf("walk directory: %w", walkErr)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, root, path string, d fs.DirEntry) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("calculate relative path: %w", err)
	}
	name := filepath.ToSlash(rel)

	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header %s: %w", name, err)
	}
	header.Name = name

	if d.IsDir() {
		header.Name += "/"
		header.Method = zip.Store
		_, err := zw.CreateHeader(header)
		return err
	}

	// Only regular files carry content; symlinks and devices are skipped.
	if !info.Mode().IsRegular() {
		return nil
	}

	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}

	f, err := os.Open(path) //#nosec G304 -- path comes from walking srcDir
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("zip entry %s: %w", name, err)
	}
	return nil
}
