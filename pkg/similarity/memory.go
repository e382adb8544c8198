package similarity

import (
	"context"
	"sync"

	"github.com/extremevalue/research-kit/pkg/record"
)

// MemoryIndex is the default in-process Index, sufficient for a single
// workspace's catalog size (hundreds to low thousands of strategies).
type MemoryIndex struct {
	mu      sync.RWMutex
	catalog map[string]Fingerprint
}

// NewMemoryIndex returns an empty in-memory similarity index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{catalog: make(map[string]Fingerprint)}
}

func (m *MemoryIndex) Classify(_ context.Context, candidate record.Definition) (Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return classify(NewFingerprint(candidate), m.catalog), nil
}

func (m *MemoryIndex) Add(_ context.Context, id string, def record.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalog[id] = NewFingerprint(def)
	return nil
}
