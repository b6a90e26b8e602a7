package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdesilva/nicscan/constants"
)

// stubRunner fakes the external binaries. handler receives the binary name and
// full argument list and returns stdout; a nil handler entry fails the call.
type stubRunner struct {
	handlers map[string]func(args []string) ([]byte, error)
	calls    [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	h, ok := s.handlers[name]
	if !ok {
		return nil, []byte("not found"), errors.New("exec: " + name + ": not found")
	}
	out, err := h(args)
	if err != nil {
		return nil, []byte(err.Error()), err
	}
	return out, nil, nil
}

func newStubbed(cfg Config, handlers map[string]func(args []string) ([]byte, error)) (*Extractor, *stubRunner) {
	e := NewExtractor(cfg, nil)
	r := &stubRunner{handlers: handlers}
	e.runner = r
	return e, r
}

func TestFastPassPDFText(t *testing.T) {
	e, r := newStubbed(Config{}, map[string]func([]string) ([]byte, error){
		"pdftotext": func(args []string) ([]byte, error) {
			return []byte("NIC No: 913153782V\fpage two"), nil
		},
	})

	res, err := e.FastPass(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("FastPass: %v", err)
	}
	if res.Method != "pdf-text" || res.SourceType != constants.PDF {
		t.Errorf("method/source = %s/%s", res.Method, res.SourceType)
	}
	if res.Pages != 2 {
		t.Errorf("pages = %d, want 2", res.Pages)
	}
	if len(res.Runs) != 1 || !strings.Contains(res.Runs[0], "913153782V") {
		t.Errorf("runs = %q", res.Runs)
	}

	call := r.calls[0]
	if call[0] != "pdftotext" || call[len(call)-1] != "-" || call[len(call)-2] != "doc.pdf" {
		t.Errorf("pdftotext call = %v", call)
	}
}

func TestFastPassPDFTextFailure(t *testing.T) {
	e, _ := newStubbed(Config{}, map[string]func([]string) ([]byte, error){
		"pdftotext": func([]string) ([]byte, error) { return nil, errors.New("broken xref") },
	})

	res, err := e.FastPass(context.Background(), "doc.pdf")
	if err == nil {
		t.Fatal("want error")
	}
	if len(res.Runs) != 1 || res.Runs[0] != "" {
		t.Errorf("runs = %q, want single empty run", res.Runs)
	}
	if len(res.Warnings) == 0 {
		t.Error("want a warning carrying stderr")
	}
}

func TestFastPassPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("id 913153782V\r\nsecond line"), 0o644); err != nil {
		t.Fatal(err)
	}

	e, _ := newStubbed(Config{}, nil)
	res, err := e.FastPass(context.Background(), path)
	if err != nil {
		t.Fatalf("FastPass: %v", err)
	}
	if res.Method != "plain-text" || res.Pages != 1 {
		t.Errorf("method/pages = %s/%d", res.Method, res.Pages)
	}
	if want := "id 913153782V\nsecond line"; len(res.Runs) != 1 || res.Runs[0] != want {
		t.Errorf("runs = %q, want [%q]", res.Runs, want)
	}
}

func TestFastPassUnsupportedExtension(t *testing.T) {
	e, _ := newStubbed(Config{}, nil)
	if _, err := e.FastPass(context.Background(), "letter.docx"); err == nil {
		t.Error("want error for unsupported extension")
	}
}

func TestImageOCRRunPerPSM(t *testing.T) {
	e, r := newStubbed(Config{PSMModes: []int{6, 11, 3}}, map[string]func([]string) ([]byte, error){
		"tesseract": func(args []string) ([]byte, error) {
			// echo the psm back so each run is distinguishable
			for i, a := range args {
				if a == "--psm" {
					return []byte("psm " + args[i+1]), nil
				}
			}
			return nil, errors.New("no psm flag")
		},
	})

	res, err := e.FastPass(context.Background(), "card.jpg")
	if err != nil {
		t.Fatalf("FastPass: %v", err)
	}
	if res.Method != "image-ocr" || res.SourceType != constants.IMAGE {
		t.Errorf("method/source = %s/%s", res.Method, res.SourceType)
	}
	want := []string{"psm 6", "psm 11", "psm 3"}
	if len(res.Runs) != len(want) {
		t.Fatalf("runs = %q, want %d runs", res.Runs, len(want))
	}
	for i, w := range want {
		if res.Runs[i] != w {
			t.Errorf("run %d = %q, want %q", i, res.Runs[i], w)
		}
	}
	for _, call := range r.calls {
		joined := strings.Join(call, " ")
		if !strings.Contains(joined, "tessedit_char_whitelist="+defaultWhitelist) {
			t.Errorf("call missing whitelist: %v", call)
		}
	}
}

func TestImageOCRPartialFailure(t *testing.T) {
	n := 0
	e, _ := newStubbed(Config{PSMModes: []int{6, 11}}, map[string]func([]string) ([]byte, error){
		"tesseract": func([]string) ([]byte, error) {
			n++
			if n == 1 {
				return nil, errors.New("segfault")
			}
			return []byte("recovered text"), nil
		},
	})

	res, err := e.FastPass(context.Background(), "card.png")
	if err != nil {
		t.Fatalf("one surviving pass should not fail the scan: %v", err)
	}
	if len(res.Runs) != 2 || res.Runs[0] != "" || res.Runs[1] != "recovered text" {
		t.Errorf("runs = %q", res.Runs)
	}
	if len(res.Warnings) == 0 {
		t.Error("failed pass should leave a warning")
	}
}

func TestImageOCRAllPassesFail(t *testing.T) {
	e, _ := newStubbed(Config{PSMModes: []int{6, 11}}, map[string]func([]string) ([]byte, error){
		"tesseract": func([]string) ([]byte, error) { return nil, errors.New("no tessdata") },
	})

	if _, err := e.FastPass(context.Background(), "card.png"); err == nil {
		t.Error("want error when every pass fails")
	}
}

func TestForcedOCRPlainTextIsNoop(t *testing.T) {
	e, _ := newStubbed(Config{}, nil)
	res, err := e.ForcedOCR(context.Background(), "note.txt")
	if err != nil {
		t.Fatalf("ForcedOCR: %v", err)
	}
	if len(res.Runs) != 0 {
		t.Errorf("runs = %q, want none", res.Runs)
	}
	if len(res.Warnings) == 0 {
		t.Error("want a warning explaining there is nothing to OCR")
	}
}

func TestForcedOCRPDF(t *testing.T) {
	e, r := newStubbed(Config{PSMModes: []int{6, 11}}, map[string]func([]string) ([]byte, error){
		"tesseract": func(args []string) ([]byte, error) {
			return []byte("text of " + filepath.Base(args[0])), nil
		},
	})
	r.handlers["pdftoppm"] = func(args []string) ([]byte, error) {
		prefix := args[len(args)-1]
		for i := 1; i <= 2; i++ {
			name := fmt.Sprintf("%s-%d.png", prefix, i)
			if err := os.WriteFile(name, []byte("png"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	res, err := e.ForcedOCR(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("ForcedOCR: %v", err)
	}
	if res.Method != "pdf-ocr" || res.Pages != 2 {
		t.Errorf("method/pages = %s/%d", res.Method, res.Pages)
	}
	if len(res.Runs) != 2 {
		t.Fatalf("runs = %d, want one per PSM mode", len(res.Runs))
	}
	for i, run := range res.Runs {
		if !strings.Contains(run, "\n\f\n") {
			t.Errorf("run %d missing page break marker: %q", i, run)
		}
		if !strings.Contains(run, "page-1.png") || !strings.Contains(run, "page-2.png") {
			t.Errorf("run %d missing page text: %q", i, run)
		}
	}

	first := r.calls[0]
	if first[0] != "pdftoppm" {
		t.Errorf("first call = %v, want pdftoppm", first)
	}
	joined := strings.Join(first, " ")
	if !strings.Contains(joined, "-r 300") || !strings.Contains(joined, "-png") {
		t.Errorf("pdftoppm args = %v", first)
	}
}

func TestForcedOCRPDFRasterFailure(t *testing.T) {
	e, _ := newStubbed(Config{}, map[string]func([]string) ([]byte, error){
		"pdftoppm": func([]string) ([]byte, error) { return nil, errors.New("encrypted") },
	})

	res, err := e.ForcedOCR(context.Background(), "doc.pdf")
	if err == nil {
		t.Fatal("want error")
	}
	if len(res.Runs) != 1 || res.Runs[0] != "" {
		t.Errorf("runs = %q, want single empty run", res.Runs)
	}
}

func TestConfigDefaults(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	if e.cfg.Pdftotext != "pdftotext" || e.cfg.Pdftoppm != "pdftoppm" || e.cfg.Tesseract != "tesseract" {
		t.Errorf("binary defaults = %+v", e.cfg)
	}
	if e.cfg.DPI != 300 || e.cfg.TesseractLang != "eng" {
		t.Errorf("dpi/lang defaults = %d/%s", e.cfg.DPI, e.cfg.TesseractLang)
	}
	if len(e.cfg.PSMModes) != 2 || e.cfg.PSMModes[0] != 6 || e.cfg.PSMModes[1] != 11 {
		t.Errorf("psm defaults = %v", e.cfg.PSMModes)
	}
	if e.cfg.Whitelist != defaultWhitelist {
		t.Errorf("whitelist default = %q", e.cfg.Whitelist)
	}
}
