package ocr

import "testing"

func TestCleanup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf to lf", "a\r\nb\rc", "a\nb\nc"},
		{"box rows dropped", "head\n-----\ntail", "head\n\ntail"},
		{"underscore rows dropped", "head\n  ____  \ntail", "head\n\ntail"},
		{"tabs to space", "a\t\tb", "a b"},
		{"wide gaps shrink", "NIC     913153782V", "NIC  913153782V"},
		{"blank lines collapse", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing spaces trimmed", "line one   \nline two", "line one\nline two"},
		{"small digit gaps kept", "913 153 782 V", "913 153 782 V"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cleanup(tt.in); got != tt.want {
				t.Errorf("Cleanup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
