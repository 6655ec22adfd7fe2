// Package fs implementa el backend de archivo: un único JSON en disco,
// reescrito completo (y de forma atómica) en cada escritura.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	store "github.com/dropDatabas3/mailadmin/internal/store"
	"github.com/dropDatabas3/mailadmin/internal/util/atomicwrite"
)

const defaultPath = "db.json"

func init() {
	store.RegisterAdapter(&fsAdapter{})
}

type fsAdapter struct{}

func (a *fsAdapter) Name() string { return "fs" }

func (a *fsAdapter) Open(ctx context.Context, cfg store.AdapterConfig) (store.Backend, error) {
	return New(cfg.Path)
}

// Backend lee/escribe el documento en path.
type Backend struct {
	path string
}

// New valida que el directorio padre exista (lo crea si hace falta).
func New(path string) (*Backend, error) {
	if path == "" {
		path = defaultPath
	}
	path = filepath.Clean(path)

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, fmt.Errorf("fs: create dir %s: %w", dir, mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("fs: stat %s: %w", dir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("fs: %s is not a directory", dir)
	}
	return &Backend{path: path}, nil
}

// Path retorna la ruta del archivo.
func (b *Backend) Path() string { return b.path }

func (b *Backend) Name() string { return "fs" }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotExist
		}
		return nil, fmt.Errorf("fs: read %s: %w", b.path, err)
	}
	return data, nil
}

func (b *Backend) Write(ctx context.Context, data []byte) error {
	if err := atomicwrite.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("fs: write %s: %w", b.path, err)
	}
	return nil
}

func (b *Backend) Close() error { return nil }
