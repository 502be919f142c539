// Package snapshot persists client page models between sessions.
package snapshot

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/ngutils"
)

// Store saves and loads client models.
type Store interface {
	// Save stores the model of a client, replacing any previous snapshot.
	Save(ctx context.Context, clientID string, m ngutils.Model) error

	// Load returns the stored model. ok is false when no snapshot exists.
	Load(ctx context.Context, clientID string) (m ngutils.Model, ok bool, err error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, clientID string) error
}

// MemoryStore keeps snapshots in process memory as encoded JSON, so loads
// return independent copies.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, clientID string, m ngutils.Model) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[clientID] = data
	s.mu.Unlock()
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context, clientID string) (ngutils.Model, bool, error) {
	s.mu.RLock()
	data, ok := s.data[clientID]
	s.mu.RUnlock()
	if !ok {
		return ngutils.Model{}, false, nil
	}
	m, err := Decode(data)
	if err != nil {
		return ngutils.Model{}, false, err
	}
	return m, true, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	delete(s.data, clientID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Encode serializes a model.
func Encode(m ngutils.Model) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.New("N011").Wrap(err)
	}
	return data, nil
}

// Decode parses and validates a serialized model.
func Decode(data []byte) (ngutils.Model, error) {
	var m ngutils.Model
	if err := json.Unmarshal(data, &m); err != nil {
		return ngutils.Model{}, errors.New("N012").Wrap(err)
	}
	for i := range m.ContributedTags {
		if err := m.ContributedTags[i].Validate(); err != nil {
			return ngutils.Model{}, errors.New("N012").Wrap(err)
		}
	}
	return m, nil
}
