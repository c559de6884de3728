// Package fileutil writes assets and hand histories without leaving partial
// files behind.
package fileutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileAtomic replaces filename with data. Readers see the old file or
// the new one, never a partial write.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return WriteAtomic(filename, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic is WriteFileAtomic for content streamed by write, such as the
// hand rank table.
func WriteAtomic(filename string, perm os.FileMode, write func(io.Writer) error) error {
	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmpFile, 1<<20)
	if err := write(bw); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", filename, err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", filename, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filename, err)
	}
	closed := tmpFile
	tmpFile = nil

	if err := os.Chmod(closed.Name(), perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", filename, err)
	}

	if err := os.Rename(tmpPath, filename); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", filename, err)
	}

	return nil
}
