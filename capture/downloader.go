package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/flanksource/commons/logger"
)

// Filename is the name every export is saved under.
const Filename = "gartner-hype-cycle-screenshot.png"

// Downloader delivers an exported image to the user.
type Downloader interface {
	// Save stores data under name and returns where it went.
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// FileDownloader saves into a directory. The file is written to a temporary
// name and renamed into place, so a failed save never leaves a partial file.
type FileDownloader struct {
	Dir string
}

// NewFileDownloader saves into dir, or the working directory if dir is empty.
func NewFileDownloader(dir string) *FileDownloader {
	if dir == "" {
		dir = "."
	}
	return &FileDownloader{Dir: dir}
}

// Save writes data to Dir/name, replacing any previous export.
func (f *FileDownloader) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", f.Dir, err)
	}

	tmp, err := os.CreateTemp(f.Dir, ".download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return "", fmt.Errorf("failed to sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}

	path := filepath.Join(f.Dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move export into place: %w", err)
	}
	logger.Infof("Saved %s (%d bytes)", path, len(data))
	return path, nil
}

// MemoryDownloader keeps exports in memory.
type MemoryDownloader struct {
	mu    sync.Mutex
	files map[string][]byte
	saves int
}

// NewMemoryDownloader creates an empty in-memory downloader.
func NewMemoryDownloader() *MemoryDownloader {
	return &MemoryDownloader{files: map[string][]byte{}}
}

// Save stores a copy of data under name.
func (m *MemoryDownloader) Save(_ context.Context, name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = append([]byte(nil), data...)
	m.saves++
	return name, nil
}

// File returns the last export saved as name.
func (m *MemoryDownloader) File(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	return data, ok
}

// Saves counts successful saves.
func (m *MemoryDownloader) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
