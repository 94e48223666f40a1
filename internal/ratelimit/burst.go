package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BurstStore hands out a token-bucket limiter per client identifier. It sits
// in front of the daily quota to absorb rapid-fire submissions before they
// reach the counter store. Idle entries are dropped by Cleanup.
type BurstStore struct {
	mu      sync.Mutex
	entries map[string]*burstEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type burstEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewBurstStore(rps float64, burst int) *BurstStore {
	return &BurstStore{
		entries: make(map[string]*burstEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
	}
}

// Allow reports whether one more request from identifier fits in its bucket.
func (s *BurstStore) Allow(identifier string) bool {
	now := time.Now()

	s.mu.Lock()
	ent, ok := s.entries[identifier]
	if !ok {
		ent = &burstEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[identifier] = ent
	}
	ent.lastSeen = now
	s.mu.Unlock()

	return ent.lim.Allow()
}

// Cleanup drops buckets not seen within the idle TTL.
func (s *BurstStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup periodically until ctx is done.
func (s *BurstStore) StartJanitor(ctx context.Context) {
	t := time.NewTicker(2 * time.Minute)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
