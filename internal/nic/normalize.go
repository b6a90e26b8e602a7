package nic

import (
	"regexp"
	"strings"
)

var (
	// Spaced/hyphenated digit blocks as OCR tends to split them:
	// "123 456 789" and "1234 5678 9012".
	reGroup333 = regexp.MustCompile(`\b(\d{3})[ \t\-_.:]+(\d{3})[ \t\-_.:]+(\d{3})\b`)
	reGroup444 = regexp.MustCompile(`\b(\d{4})[ \t\-_.:]+(\d{4})[ \t\-_.:]+(\d{4})\b`)

	// Digit run with a small gap before the check letter: "913153782 V".
	reTailGap = regexp.MustCompile(`\b(\d{9})[\W_]{0,4}([VXYvxy])\b`)

	// A whole fuzzy cluster, confusables included, used only for corpus
	// normalization so that folded candidates count as literal occurrences.
	reFuzzyCluster = regexp.MustCompile(
		`\b([` + confusableClass + `]{3})[\W_]{0,3}([` + confusableClass + `]{3})[\W_]{0,3}([` + confusableClass + `]{3})[\W_]{0,4}([VXYvxy])\b`)
)

// confusableClass is the character class of literal digits plus every key of
// DigitConfusions. Kept as a constant so the regexes and the fold table cannot
// drift apart silently; library_test.go asserts they agree.
const confusableClass = `0-9OoQDBIl|ZzSsGgq`

// JoinDigitGroups merges three-group clusters of 3- and 4-digit blocks
// separated by small amounts of whitespace/punctuation into contiguous runs:
// "123 456 789" -> "123456789". Applied to runs before the anchored, tolerant
// and exact shapes match, and to the corpus before counting.
func JoinDigitGroups(s string) string {
	if s == "" {
		return ""
	}
	s = reGroup444.ReplaceAllString(s, "$1$2$3")
	s = reGroup333.ReplaceAllString(s, "$1$2$3")
	return s
}

// CanonicalOldNIC produces the display form of an old-format NIC from its
// 9-digit head and check letter: uppercase, Y mapped to V. Idempotent.
func CanonicalOldNIC(head, tail string) string {
	t := strings.ToUpper(tail)
	if t == "Y" {
		t = "V"
	}
	return head + t
}

// NormalizeCorpus prepares one run for frequency counting. Confusable-digit
// folding happens only inside fuzzy-shaped clusters, so unrelated prose is
// never rewritten. Canonical identifier values pass through unchanged.
func NormalizeCorpus(s string) string {
	if s == "" {
		return ""
	}
	// Fold whole fuzzy clusters before any case change, on the same raw text
	// the fuzzy shape matches, so a fuzzy candidate's canonical value appears
	// literally in the corpus (keeps the count >= 1 invariant).
	s = reFuzzyCluster.ReplaceAllStringFunc(s, func(m string) string {
		g := reFuzzyCluster.FindStringSubmatch(m)
		digits := FoldDigits(g[1] + g[2] + g[3])
		if !isDigits(digits) || len(digits) != 9 {
			return m
		}
		return CanonicalOldNIC(digits, g[4])
	})
	s = strings.ToUpper(s)
	s = JoinDigitGroups(s)
	s = reTailGap.ReplaceAllStringFunc(s, func(m string) string {
		g := reTailGap.FindStringSubmatch(m)
		return CanonicalOldNIC(g[1], g[2])
	})
	return s
}
