package consultation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps consultations in process. Records are stored
// serialized so callers never share state with the store.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID][]byte)}
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Consultation, error) {
	r.mu.Lock()
	data, ok := r.items[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var c Consultation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *MemoryRepository) Save(_ context.Context, c *Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.items[c.ID]
	if c.Version == 0 && exists {
		return ErrConflict
	}
	if c.Version != 0 {
		if !exists {
			return ErrConflict
		}
		var existing Consultation
		if err := json.Unmarshal(current, &existing); err != nil {
			return err
		}
		if existing.Version != c.Version {
			return ErrConflict
		}
	}

	now := time.Now().UTC()
	stored := *c
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	stored.Version++

	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	r.items[c.ID] = data

	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = stored.UpdatedAt
	c.Version = stored.Version
	return nil
}
