package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PathSource maps input keys to paths on disk. Keys with an empty path are
// treated as absent.
type PathSource map[string]string

func (p PathSource) Fetch(ctx context.Context, key string) (*File, error) {
	path := strings.TrimSpace(p[key])
	if path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{Name: filepath.Base(path), Data: data}, nil
}

// Toggles is a fixed set of flag values.
type Toggles map[string]bool

func (t Toggles) Toggle(key string) bool { return t[key] }

// DirSink writes each download into Dir.
type DirSink struct {
	Dir string
	// Force allows overwriting existing files.
	Force bool

	mu      sync.Mutex
	written []string
}

func (d *DirSink) Download(ctx context.Context, data []byte, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base := filepath.Base(name)
	if base != name || base == "." || base == ".." {
		return fmt.Errorf("convert: invalid output name %q", name)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d.Dir, base)

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !d.Force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	d.mu.Lock()
	d.written = append(d.written, path)
	d.mu.Unlock()
	return nil
}

// Written returns the paths written so far.
func (d *DirSink) Written() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.written...)
}

// MemorySink keeps copies of every download.
type MemorySink struct {
	mu    sync.Mutex
	files []File
}

func (m *MemorySink) Download(_ context.Context, data []byte, name string) error {
	m.mu.Lock()
	m.files = append(m.files, File{Name: name, Data: bytes.Clone(data)})
	m.mu.Unlock()
	return nil
}

// Files returns the downloads in the order they were received.
func (m *MemorySink) Files() []File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]File(nil), m.files...)
}
