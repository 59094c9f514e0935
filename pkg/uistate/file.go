package uistate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File stores the snapshot as JSON. Writes go to a temporary file that is
// renamed over the target, so a crash never leaves a torn snapshot.
type File[T any] struct {
	path  string
	perm  fs.FileMode
	codec codec
	mu    sync.Mutex
}

// NewFile creates a file backend writing to path. Missing parent directories
// are created on the first save.
func NewFile[T any](path string, opts ...BackendOption) (*File[T], error) {
	if path == "" {
		return nil, ErrMissingFilePath
	}
	return &File[T]{path: path, perm: 0o600, codec: newCodec(opts)}, nil
}

// Path returns the snapshot location.
func (f *File[T]) Path() string { return f.path }

func (f *File[T]) Load(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, ErrNoSnapshot
	}
	if err != nil {
		return zero, fmt.Errorf("read snapshot: %w", err)
	}
	return decode[T](f.codec, data)
}

func (f *File[T]) Save(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := f.codec.encode(v)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, f.perm); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (f *File[T]) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

func (f *File[T]) Close() error { return nil }
