package nic

import (
	"log/slog"

	"github.com/tdesilva/nicscan/constants"
)

// Candidate is one tier-tagged, canonicalized hit from a single run.
// Candidates are ephemeral: produced and consumed within one scan.
type Candidate struct {
	Value string
	Tier  constants.Tier
	Run   int // index of the source run
}

// Extractor applies a Library to a document's text runs. It is pure and
// stateless; one Extractor can serve concurrent scans.
type Extractor struct {
	lib    *Library
	logger *slog.Logger
}

func NewExtractor(lib *Library, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{lib: lib, logger: logger}
}

// Extract finds all non-overlapping matches of every shape in every run and
// emits canonicalized candidates. A run that matches nothing contributes
// nothing; empty runs are skipped. Never fails, whatever the input text.
func (x *Extractor) Extract(runs []string) []Candidate {
	var out []Candidate
	for i, run := range runs {
		if run == "" {
			continue
		}
		joined := JoinDigitGroups(run)
		for _, sh := range x.lib.shapes {
			text := run
			if sh.joinGroups {
				text = joined
			}
			for _, g := range sh.re.FindAllStringSubmatch(text, -1) {
				val, ok := sh.canon(g)
				if !ok {
					continue
				}
				out = append(out, Candidate{Value: val, Tier: sh.Tier, Run: i})
			}
		}
	}
	return out
}

// Scan is the whole core in one call: extract candidates, score them against
// the normalized corpus of all runs, and rank. Empty input gives empty output.
func (x *Extractor) Scan(runs []string) []Result {
	cands := x.Extract(runs)
	if len(cands) == 0 {
		return nil
	}
	corpus := BuildCorpus(runs)
	return Rank(cands, x.Score(cands, corpus))
}
