package constants

import "testing"

func TestParseTierRoundTrips(t *testing.T) {
	for _, tier := range Tiers {
		got, ok := ParseTier(string(tier))
		if !ok || got != tier {
			t.Errorf("ParseTier(%q) = %q, %v", tier, got, ok)
		}
	}
}

func TestParseTierRejectsUnknown(t *testing.T) {
	for _, s := range []string{"", "anchored", "EXACT", "ANCHORED "} {
		if got, ok := ParseTier(s); ok {
			t.Errorf("ParseTier(%q) = %q, want rejection", s, got)
		}
	}
}
