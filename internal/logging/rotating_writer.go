package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RotatingFileWriter appends to a log file and rotates it once it grows past
// maxSize. Backups are named <base>.<n><ext>, with .1 the most recent.
type RotatingFileWriter struct {
	mu         sync.Mutex
	file       *os.File
	filePath   string
	maxSize    int64
	maxBackups int
	size       int64
}

// NewRotatingFileWriter opens (or creates) filePath for appending.
// A maxSize of 0 disables rotation.
func NewRotatingFileWriter(filePath string, maxSize int64, maxBackups int) (*RotatingFileWriter, error) {
	w := &RotatingFileWriter{
		filePath:   filePath,
		maxSize:    maxSize,
		maxBackups: maxBackups,
	}

	if err := w.open(); err != nil {
		return nil, err
	}

	info, err := w.file.Stat()
	if err != nil {
		_ = w.file.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}
	w.size = info.Size()

	return w, nil
}

// Write implements io.Writer
func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.maxSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Close closes the file
func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingFileWriter) open() error {
	file, err := os.OpenFile(w.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	w.file = file
	return nil
}

// rotate shifts .n to .n+1, dropping anything past maxBackups, then moves the
// live file to .1 and reopens it.
func (w *RotatingFileWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	if w.maxBackups <= 0 {
		_ = os.Remove(w.filePath)
	} else {
		_ = os.Remove(w.backupName(w.maxBackups))
		for i := w.maxBackups - 1; i >= 1; i-- {
			if _, err := os.Stat(w.backupName(i)); err == nil {
				if err := os.Rename(w.backupName(i), w.backupName(i+1)); err != nil {
					return err
				}
			}
		}
		if err := os.Rename(w.filePath, w.backupName(1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if err := w.open(); err != nil {
		return err
	}
	w.size = 0
	return nil
}

func (w *RotatingFileWriter) backupName(index int) string {
	dir := filepath.Dir(w.filePath)
	base := filepath.Base(w.filePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, index, ext))
}

var _ io.WriteCloser = (*RotatingFileWriter)(nil)
