package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tdesilva/nicscan/constants"
)

// tessedit_char_whitelist: digits, uppercase letters, and the old-NIC check
// letters in both cases. Keeping the alphabet small cuts down on prose noise
// around the identifier fields.
const defaultWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZvxVXyY"

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	// PSMModes lists the tesseract page segmentation modes to try; each mode
	// produces one independent text run. Default {6, 11}.
	PSMModes []int
	// Whitelist overrides tessedit_char_whitelist; default defaultWhitelist.
	Whitelist string

	TessdataDir string
}

// Result is one acquisition pass over a document. Runs are independent
// transcription attempts; a failed attempt contributes an empty string and a
// warning rather than disappearing.
type Result struct {
	Runs       []string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | constants.TXT
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text"
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if len(cfg.PSMModes) == 0 {
		cfg.PSMModes = []int{6, 11}
	}
	if cfg.Whitelist == "" {
		cfg.Whitelist = defaultWhitelist
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// FastPass is the cheap first attempt: embedded text for PDFs, plain read for
// text files, OCR for images (images have no cheaper source of text).
func (e *Extractor) FastPass(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("fast pass", "path", path, "ext", ext)

	var res Result
	var err error
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.pdfText(ctx, path)
	case constants.IMAGE:
		res, err = e.imageOCR(ctx, path)
	case constants.TXT:
		res, err = e.plainText(path)
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	return res, err
}

// ForcedOCR rasterizes and OCRs regardless of embedded text. For images it is
// identical to the fast pass; for plain text there is nothing to OCR and the
// result carries zero runs.
func (e *Extractor) ForcedOCR(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("forced ocr", "path", path, "ext", ext)

	var res Result
	var err error
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.pdfOCR(ctx, path)
	case constants.IMAGE:
		res, err = e.imageOCR(ctx, path)
	case constants.TXT:
		res = Result{SourceType: constants.TXT, Method: "plain-text",
			Warnings: []string{"plain text has nothing to OCR"}}
	default:
		return Result{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	return res, err
}

func (e *Extractor) plainText(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{SourceType: constants.TXT, Method: "plain-text",
			Runs: []string{""}, Warnings: []string{err.Error()}}, err
	}
	return Result{
		Runs:       []string{Cleanup(string(b))},
		Pages:      1,
		SourceType: constants.TXT,
		Method:     "plain-text",
	}, nil
}
