package pipeline

import (
	"context"
	"log/slog"

	"github.com/tdesilva/nicscan/constants"
	"github.com/tdesilva/nicscan/internal/nic"
	"github.com/tdesilva/nicscan/internal/ocr"
)

// Acquirer is the text-acquisition collaborator: it turns a file into text
// runs. The scan policy below treats everything behind it as opaque.
type Acquirer interface {
	FastPass(ctx context.Context, path string) (ocr.Result, error)
	ForcedOCR(ctx context.Context, path string) (ocr.Result, error)
}

// ScanOutcome is one document's scan: the pooled runs and the ranked result.
type ScanOutcome struct {
	Results []nic.Result
	Runs    []string
	Forced  bool // whether the forced-OCR pass was issued
	Notes   []string
}

// ScanPath applies the fast/forced acquisition policy around the core:
//
//  1. fast pass (embedded PDF text / plain read / image OCR), scan;
//  2. only when no Anchored-tier value exists, issue the expensive forced-OCR
//     pass, pool its runs with the fast ones, and scan again.
//
// The early stop uses only tier information the core exposes; the core itself
// knows nothing about passes. Acquisition failures degrade to empty runs (the
// acquirer reports them via warnings and its own logging), so a document with
// unreadable text yields an empty result, not an error.
func ScanPath(ctx context.Context, acq Acquirer, scanner *nic.Extractor, path string, logger *slog.Logger) (ScanOutcome, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var out ScanOutcome

	fast, err := acq.FastPass(ctx, path)
	if err != nil {
		logger.Warn("fast pass failed, continuing with empty runs", "path", path, "error", err)
	}
	out.Runs = append(out.Runs, fast.Runs...)
	out.Notes = append(out.Notes, fast.Warnings...)
	out.Results = scanner.Scan(out.Runs)

	if hasAnchored(out.Results) {
		return out, nil
	}

	forced, err := acq.ForcedOCR(ctx, path)
	if err != nil {
		logger.Warn("forced ocr failed, keeping fast-pass results", "path", path, "error", err)
	}
	out.Forced = true
	out.Runs = append(out.Runs, forced.Runs...)
	out.Notes = append(out.Notes, forced.Warnings...)
	out.Results = scanner.Scan(out.Runs)
	return out, nil
}

func hasAnchored(results []nic.Result) bool {
	for _, r := range results {
		if r.Tier == constants.TierAnchored {
			return true
		}
	}
	return false
}
