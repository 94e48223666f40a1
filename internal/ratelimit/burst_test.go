package ratelimit

import (
	"testing"
	"time"
)

func TestBurstStore_AllowWithinBurst(t *testing.T) {
	s := NewBurstStore(1, 3)

	for i := 0; i < 3; i++ {
		if !s.Allow("1.2.3.4") {
			t.Fatalf("call %d: Allow = false, want true within burst", i+1)
		}
	}
	if s.Allow("1.2.3.4") {
		t.Error("call 4: Allow = true, want false once burst exhausted")
	}

	// Other identifiers have their own bucket.
	if !s.Allow("5.6.7.8") {
		t.Error("fresh identifier: Allow = false, want true")
	}
}

func TestBurstStore_Cleanup(t *testing.T) {
	s := NewBurstStore(1, 1)
	s.idleTTL = 0

	s.Allow("1.2.3.4")
	time.Sleep(time.Millisecond)
	s.Cleanup()

	s.mu.Lock()
	n := len(s.entries)
	s.mu.Unlock()
	if n != 0 {
		t.Errorf("entries after cleanup = %d, want 0", n)
	}
}
