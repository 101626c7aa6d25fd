package storage

import (
	"context"
	"sync"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// MemorySaver records artifacts in memory.
type MemorySaver struct {
	// Fail makes Save return the mapped error for a filename.
	Fail map[string]error

	mu    sync.Mutex
	saved []domain.Artifact
	calls int
}

// NewMemorySaver creates an empty MemorySaver.
func NewMemorySaver() *MemorySaver {
	return &MemorySaver{}
}

// Save implements domain.Saver.
func (m *MemorySaver) Save(ctx context.Context, artifact domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := m.Fail[artifact.Filename]; ok {
		return err
	}
	m.saved = append(m.saved, artifact)
	return nil
}

// Saved returns the saved artifacts in call order.
func (m *MemorySaver) Saved() []domain.Artifact {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Artifact, len(m.saved))
	copy(out, m.saved)
	return out
}

// Calls returns how many times Save was called, failures included.
func (m *MemorySaver) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
