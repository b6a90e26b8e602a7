package nic

import "testing"

func TestJoinDigitGroups(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaced 3-3-3", "123 456 789", "123456789"},
		{"hyphenated 3-3-3", "123-456-789", "123456789"},
		{"spaced 4-4-4", "1234 5678 9012", "123456789012"},
		{"mixed separators", "123 - 456_789", "123456789"},
		{"trailing letter kept", "123 456 789 V", "123456789 V"},
		{"two groups only", "123 456", "123 456"},
		{"short groups untouched", "12 34 56", "12 34 56"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinDigitGroups(tt.in); got != tt.want {
				t.Errorf("JoinDigitGroups(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalOldNIC(t *testing.T) {
	tests := []struct {
		head, tail, want string
	}{
		{"913153782", "v", "913153782V"},
		{"913153782", "V", "913153782V"},
		{"123456789", "y", "123456789V"},
		{"123456789", "Y", "123456789V"},
		{"123456789", "x", "123456789X"},
	}
	for _, tt := range tests {
		if got := CanonicalOldNIC(tt.head, tt.tail); got != tt.want {
			t.Errorf("CanonicalOldNIC(%q, %q) = %q, want %q", tt.head, tt.tail, got, tt.want)
		}
	}
}

func TestNormalizeCorpus(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uppercases", "nic no: 913153782v", "NIC NO: 913153782V"},
		{"joins and attaches tail", "123 456 789 v", "123456789V"},
		{"closes tail gap", "913153782 - v", "913153782V"},
		{"folds fuzzy cluster", "9I3IS378Z V", "913153782V"},
		{"canonical passes through", "913153782V", "913153782V"},
		{"twelve digit groups join", "2000 1234 5678", "200012345678"},
		{"prose untouched", "Total: 1234.56", "TOTAL: 1234.56"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCorpus(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeCorpus(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := NormalizeCorpus(got); again != got {
				t.Errorf("not idempotent: NormalizeCorpus(%q) = %q", got, again)
			}
		})
	}
}
