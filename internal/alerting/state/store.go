// Package state persists per-instance alert status and decides which
// evaluation results are notification-worthy transitions.
package state

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// InstanceID identifies one configured alert instance. Index is 0 for
// single-instance families.
type InstanceID struct {
	Family string
	Index  int
}

func (id InstanceID) String() string {
	if id.Index == 0 {
		return id.Family
	}
	return fmt.Sprintf("%s/%d", id.Family, id.Index)
}

// Status is the persisted condition of an alert instance.
type Status string

const (
	StatusNormal    Status = "normal"
	StatusTriggered Status = "triggered"
)

// Record is the stored state for one instance. Absence of a record is
// equivalent to StatusNormal.
type Record struct {
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the durable instance-state mapping. Implementations must be
// safe for concurrent use across different ids; a single id is only
// ever touched by one cycle at a time.
type Store interface {
	Get(ctx context.Context, id InstanceID) (Record, bool, error)
	Set(ctx context.Context, id InstanceID, rec Record) error
}

// NoopStore is the null object used when persistence is not wired in.
// It never finds a record and accepts every write, so the surrounding
// logic is identical with or without a real store.
type NoopStore struct{}

func (NoopStore) Get(ctx context.Context, id InstanceID) (Record, bool, error) {
	return Record{}, false, nil
}

func (NoopStore) Set(ctx context.Context, id InstanceID, rec Record) error { return nil }

// MemoryStore keeps records in process memory. Used in tests and as a
// fallback when only within-process suppression is needed.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[InstanceID]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: map[InstanceID]Record{}}
}

func (s *MemoryStore) Get(ctx context.Context, id InstanceID) (Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	return rec, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, id InstanceID, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[id] = rec
	return nil
}
