package snapshot

import (
	"context"
	"encoding/json"
	"sync"

	"procurement_tracker/internal/models"
)

// MemoryStore keeps the snapshot blob in memory. It serializes through
// JSON like the redis store so tests exercise the same roundtrip.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
	// Saves counts committed writes; tests use it to observe that
	// no-op transitions skip persistence.
	Saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, state models.AppState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
	s.Saves++
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil, nil
	}
	var state models.AppState
	if err := json.Unmarshal(s.blob, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
