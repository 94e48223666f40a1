package ratelimit

import (
	"context"
	"sync"
)

// Counts is the persisted daily usage record. The JSON field names match the
// on-disk format of earlier deployments, so existing rate files keep working.
type Counts struct {
	Date      string         `json:"date"`
	Global    int            `json:"global"`
	PerClient map[string]int `json:"perIp"`
}

// clone returns a deep copy so a failed update never leaks partial mutations.
func (c Counts) clone() Counts {
	out := Counts{Date: c.Date, Global: c.Global}
	if c.PerClient != nil {
		out.PerClient = make(map[string]int, len(c.PerClient))
		for k, v := range c.PerClient {
			out.PerClient[k] = v
		}
	}
	return out
}

// Store persists the shared daily counters. Update applies fn to the current
// counts and persists the result atomically: if fn returns an error, nothing
// is written and that error is returned unchanged. Implementations provide
// their own exclusion (mutex, file lock, Redis transaction) so concurrent
// updates never lose increments.
type Store interface {
	Update(ctx context.Context, fn func(c *Counts) error) error
}

// MemoryStore is an in-process Store, used in tests and single-instance
// deployments that don't need counts to survive a restart.
type MemoryStore struct {
	mu     sync.Mutex
	counts Counts
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(c *Counts) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.counts.clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.counts = next
	return nil
}

// Snapshot returns a copy of the current counts.
func (s *MemoryStore) Snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts.clone()
}
