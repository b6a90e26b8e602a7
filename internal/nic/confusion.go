package nic

import "strings"

// DigitConfusions maps glyphs that OCR engines commonly emit in place of
// digits to the digit they stand for. The table is applied only to substrings
// already matched as digit-shaped groups, never to arbitrary prose.
//
// Note: V, X and Y are deliberately absent. They are valid old-NIC check
// letters, so the tail position always wins; see the fuzzy shape in library.go.
var DigitConfusions = map[rune]rune{
	'O': '0', 'o': '0', 'Q': '0', 'D': '0',
	'I': '1', 'l': '1', '|': '1',
	'Z': '2', 'z': '2',
	'S': '5', 's': '5',
	'B': '8',
	'G': '6', 'g': '6',
	'q': '9',
}

// FoldDigits replaces every confusable character in s with its digit
// equivalent. Characters outside the table pass through unchanged.
func FoldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := DigitConfusions[r]; ok {
			return d
		}
		return r
	}, s)
}

// isDigits reports whether s is non-empty and consists solely of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
