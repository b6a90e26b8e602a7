package nic

import "strings"

// Separator between runs in the pooled corpus; breaks word adjacency so a
// value ending one run cannot merge with the start of the next.
const corpusSeparator = " \n "

// BuildCorpus normalizes every run and concatenates them into the single
// search corpus used for frequency counting. The corpus never leaves the
// core; it exists only to approximate how many independent OCR attempts
// saw a value.
func BuildCorpus(runs []string) string {
	parts := make([]string, 0, len(runs))
	for _, r := range runs {
		if r == "" {
			continue
		}
		parts = append(parts, NormalizeCorpus(r))
	}
	return strings.Join(parts, corpusSeparator)
}

// Score counts literal occurrences of each distinct candidate value
// (case-insensitive) in the corpus. Every emitted candidate occurs at least
// once by construction: the run it was captured from is part of the corpus
// and the corpus normalizer folds the same clusters the shapes match. A zero
// count therefore means the extraction and normalization patterns have
// drifted apart; it is logged as an error and clamped so ranking stays total.
func (x *Extractor) Score(cands []Candidate, corpus string) map[string]int {
	counts := make(map[string]int, len(cands))
	for _, c := range cands {
		u := strings.ToUpper(c.Value)
		if _, done := counts[u]; done {
			continue
		}
		n := strings.Count(corpus, u)
		if n < 1 {
			x.logger.Error("extracted candidate missing from normalized corpus",
				"value", u, "tier", c.Tier)
			n = 1
		}
		counts[u] = n
	}
	return counts
}
