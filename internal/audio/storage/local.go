// Package storage writes uploaded audio to a blob store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ChunkSize is the buffer size used when streaming uploads to disk.
const ChunkSize = 1 << 20

// ErrInvalidName is returned for object names that would escape the storage directory.
var ErrInvalidName = errors.New("invalid object name")

// Local stores objects as files in a single directory.
type Local struct {
	dir string
}

// NewLocal creates dir if needed and returns a store rooted at it.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{dir: abs}, nil
}

// Dir returns the absolute storage directory.
func (l *Local) Dir() string { return l.dir }

// Save streams r into a new file called name and returns its absolute path.
// A partially written file is removed when the copy fails or ctx is cancelled.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	path, err := l.path(name)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if err := copyChunks(ctx, f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// Remove deletes the object called name. Removing a missing object is not an error.
func (l *Local) Remove(_ context.Context, name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(l.dir, name), nil
}

func copyChunks(ctx context.Context, w io.Writer, r io.Reader) error {
	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
