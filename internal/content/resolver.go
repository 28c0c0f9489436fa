package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// Resolver maps a verified checkout session to the deliverable's bytes.
// The demo ships a single fixed file for every session; swapping in a
// per-user implementation only touches this interface.
type Resolver interface {
	Resolve(ctx context.Context, sessionID string) (io.ReadCloser, error)
	Health(ctx context.Context) error
}

// FileResolver serves one file from local disk.
type FileResolver struct {
	path string
}

func NewFileResolver(path string) *FileResolver {
	return &FileResolver{path: path}
}

func (r *FileResolver) Resolve(ctx context.Context, sessionID string) (io.ReadCloser, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open deliverable: %w", err)
	}
	return f, nil
}

func (r *FileResolver) Health(ctx context.Context) error {
	info, err := os.Stat(r.path)
	if err != nil {
		return fmt.Errorf("deliverable not readable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("deliverable path %s is a directory", r.path)
	}
	return nil
}

// MemoryResolver holds the deliverable in memory. Used in tests.
type MemoryResolver struct {
	data []byte
	err  error
}

func NewMemoryResolver(data []byte) *MemoryResolver {
	return &MemoryResolver{data: data}
}

// SetError makes subsequent calls fail, for exercising error paths.
func (r *MemoryResolver) SetError(err error) {
	r.err = err
}

func (r *MemoryResolver) Resolve(ctx context.Context, sessionID string) (io.ReadCloser, error) {
	if r.err != nil {
		return nil, r.err
	}
	return io.NopCloser(bytes.NewReader(r.data)), nil
}

func (r *MemoryResolver) Health(ctx context.Context) error {
	return r.err
}
