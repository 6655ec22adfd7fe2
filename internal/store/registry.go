// Package store implementa el "resource store": un único documento JSON con
// colecciones nombradas, persistido completo en cada escritura a través de un
// Backend intercambiable (fs, postgres, s3).
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Backend lee y escribe el documento serializado completo.
type Backend interface {
	// Name retorna el nombre del backend ("fs", "postgres", "s3").
	Name() string

	// Read retorna el documento crudo. ErrNotExist si todavía no existe.
	Read(ctx context.Context) ([]byte, error)

	// Write reemplaza el documento completo.
	Write(ctx context.Context, data []byte) error

	// Close libera recursos (pools, clientes).
	Close() error
}

// Adapter construye un Backend a partir de la configuración.
type Adapter interface {
	Name() string
	Open(ctx context.Context, cfg AdapterConfig) (Backend, error)
}

// AdapterConfig agrupa la configuración de todos los adapters.
// Cada adapter lee solo los campos que le corresponden.
type AdapterConfig struct {
	// Name del adapter: "fs", "postgres", "s3"
	Name string

	// fs
	Path string

	// postgres
	DSN          string
	DocumentName string
	MaxConns     int32

	// s3
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // MinIO / localstack
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter. Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("store: adapter %q already registered", name))
	}
	adapters[name] = a
}

// getAdapter obtiene un adapter por nombre.
func getAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres registrados, ordenados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenBackend abre el backend indicado en cfg.Name.
func OpenBackend(ctx context.Context, cfg AdapterConfig) (Backend, error) {
	a, ok := getAdapter(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("store: adapter %q not registered (available: %v)", cfg.Name, ListAdapters())
	}
	return a.Open(ctx, cfg)
}
