package store

import (
	"context"
	"sync"
)

func init() {
	RegisterAdapter(memoryAdapter{})
}

// memoryAdapter expone MemoryBackend como driver "memory" (dev/tests).
type memoryAdapter struct{}

func (memoryAdapter) Name() string { return "memory" }

func (memoryAdapter) Open(ctx context.Context, cfg AdapterConfig) (Backend, error) {
	return NewMemoryBackend(nil), nil
}

// MemoryBackend guarda el documento en memoria.
type MemoryBackend struct {
	mu     sync.Mutex
	data   []byte
	exists bool

	// ReadErr / WriteErr fuerzan fallos de I/O en tests.
	ReadErr  error
	WriteErr error

	Reads  int
	Writes int
}

// NewMemoryBackend crea un backend; data nil significa "no existe todavía".
func NewMemoryBackend(data []byte) *MemoryBackend {
	return &MemoryBackend{data: data, exists: data != nil}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if !m.exists {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryBackend) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.data = append([]byte(nil), data...)
	m.exists = true
	return nil
}

// Bytes retorna una copia de lo último escrito.
func (m *MemoryBackend) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

func (m *MemoryBackend) Close() error { return nil }
