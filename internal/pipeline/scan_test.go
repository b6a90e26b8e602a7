package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/tdesilva/nicscan/constants"
	"github.com/tdesilva/nicscan/internal/nic"
	"github.com/tdesilva/nicscan/internal/ocr"
)

type fakeAcquirer struct {
	fast       ocr.Result
	fastErr    error
	forced     ocr.Result
	forcedErr  error
	forcedHits int
}

func (f *fakeAcquirer) FastPass(context.Context, string) (ocr.Result, error) {
	return f.fast, f.fastErr
}

func (f *fakeAcquirer) ForcedOCR(context.Context, string) (ocr.Result, error) {
	f.forcedHits++
	return f.forced, f.forcedErr
}

func newScanner(t *testing.T) *nic.Extractor {
	t.Helper()
	lib, err := nic.NewLibrary()
	if err != nil {
		t.Fatal(err)
	}
	return nic.NewExtractor(lib, nil)
}

// An anchored hit on the fast pass makes the forced OCR pass unnecessary.
func TestScanPathStopsEarlyOnAnchoredHit(t *testing.T) {
	acq := &fakeAcquirer{
		fast: ocr.Result{Runs: []string{"NIC No: 913153782V"}},
	}

	out, err := ScanPath(context.Background(), acq, newScanner(t), "a.pdf", nil)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if acq.forcedHits != 0 {
		t.Errorf("forced OCR issued %d times, want 0", acq.forcedHits)
	}
	if out.Forced {
		t.Error("outcome marked forced")
	}
	if len(out.Results) != 1 || out.Results[0].Tier != constants.TierAnchored {
		t.Errorf("results = %+v", out.Results)
	}
}

// Tolerant-only results are not good enough to skip the expensive pass.
func TestScanPathForcesOCRWithoutAnchoredHit(t *testing.T) {
	acq := &fakeAcquirer{
		fast:   ocr.Result{Runs: []string{"bare 913153782V"}},
		forced: ocr.Result{Runs: []string{"NIC No: 913153782V"}},
	}

	out, err := ScanPath(context.Background(), acq, newScanner(t), "a.pdf", nil)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if acq.forcedHits != 1 {
		t.Errorf("forced OCR issued %d times, want 1", acq.forcedHits)
	}
	if !out.Forced {
		t.Error("outcome not marked forced")
	}
	if len(out.Runs) != 2 {
		t.Errorf("runs = %d, want fast + forced pooled", len(out.Runs))
	}
	if len(out.Results) != 1 || out.Results[0].Tier != constants.TierAnchored {
		t.Errorf("results = %+v", out.Results)
	}
	// both passes saw the value
	if out.Results[0].Count != 2 {
		t.Errorf("count = %d, want 2", out.Results[0].Count)
	}
}

func TestScanPathEmptyDocument(t *testing.T) {
	acq := &fakeAcquirer{
		fast:   ocr.Result{Runs: []string{"nothing to see"}},
		forced: ocr.Result{Runs: []string{"still nothing"}},
	}

	out, err := ScanPath(context.Background(), acq, newScanner(t), "a.pdf", nil)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if acq.forcedHits != 1 {
		t.Error("empty fast pass must trigger forced OCR")
	}
	if len(out.Results) != 0 {
		t.Errorf("results = %+v, want none", out.Results)
	}
}

// Acquisition failures degrade to empty runs instead of failing the scan.
func TestScanPathAcquisitionFailuresDegrade(t *testing.T) {
	acq := &fakeAcquirer{
		fastErr:   errors.New("pdftotext missing"),
		forced:    ocr.Result{Runs: []string{"NIC No: 913153782V"}},
		forcedErr: nil,
	}

	out, err := ScanPath(context.Background(), acq, newScanner(t), "a.pdf", nil)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if len(out.Results) != 1 {
		t.Errorf("results = %+v, want forced-pass hit", out.Results)
	}

	both := &fakeAcquirer{
		fastErr:   errors.New("pdftotext missing"),
		forcedErr: errors.New("tesseract missing"),
	}
	out, err = ScanPath(context.Background(), both, newScanner(t), "a.pdf", nil)
	if err != nil {
		t.Fatalf("ScanPath with both passes failing: %v", err)
	}
	if len(out.Results) != 0 {
		t.Errorf("results = %+v, want none", out.Results)
	}
}

func TestScanPathCollectsWarnings(t *testing.T) {
	acq := &fakeAcquirer{
		fast:   ocr.Result{Runs: []string{""}, Warnings: []string{"fast warn"}},
		forced: ocr.Result{Runs: []string{""}, Warnings: []string{"forced warn"}},
	}

	out, err := ScanPath(context.Background(), acq, newScanner(t), "a.pdf", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Notes) != 2 {
		t.Errorf("notes = %v, want both passes' warnings", out.Notes)
	}
}
