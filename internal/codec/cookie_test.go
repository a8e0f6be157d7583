package codec

import (
	"testing"
)

func TestNewCookieVaries(t *testing.T) {
	seen := make(map[uint32]bool)
	for i := 0; i < 32; i++ {
		seen[NewCookie()] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected NewCookie to produce varied values, got %d distinct values across 32 calls", len(seen))
	}
}
