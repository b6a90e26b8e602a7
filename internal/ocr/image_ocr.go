package ocr

import (
	"context"
	"fmt"

	"github.com/tdesilva/nicscan/constants"
)

// imageOCR runs tesseract once per configured PSM mode. OCR engines segment a
// photographed card very differently between modes, so each mode is kept as
// its own run and the frequency vote downstream decides which reading to
// trust. A failing mode contributes an empty run, never a missing one.
func (e *Extractor) imageOCR(ctx context.Context, path string) (Result, error) {
	res := Result{Pages: 1, SourceType: constants.IMAGE, Method: "image-ocr"}

	var lastErr error
	failed := 0
	for _, psm := range e.cfg.PSMModes {
		txt, warns, err := e.tesseract(ctx, path, psm)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			res.Runs = append(res.Runs, "")
			res.Warnings = append(res.Warnings, err.Error())
			lastErr = err
			failed++
			continue
		}
		res.Runs = append(res.Runs, txt)
	}
	if failed == len(e.cfg.PSMModes) {
		return res, fmt.Errorf("all tesseract passes failed: %w", lastErr)
	}
	return res, nil
}

// tesseract OCRs one image file with the given page segmentation mode and the
// configured character whitelist.
func (e *Extractor) tesseract(ctx context.Context, path string, psm int) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang,
		"--psm", fmt.Sprintf("%d", psm),
		"-c", "tessedit_char_whitelist=" + e.cfg.Whitelist,
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract psm %d: %w", psm, err)
	}
	return Cleanup(string(out)), nil, nil
}
