package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/tdesilva/nicscan/constants"
)

// pdfText extracts embedded text: pdftotext -layout -enc UTF-8 -eol unix <f> -
// One run for the whole document; pages counted by the \f separators.
func (e *Extractor) pdfText(ctx context.Context, path string) (Result, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Result{SourceType: constants.PDF, Method: "pdf-text",
			Runs: []string{""}, Warnings: []string{string(errb)}}, err
	}
	text := Cleanup(string(out))
	return Result{
		Runs:       []string{text},
		Pages:      1 + strings.Count(string(out), "\f"),
		SourceType: constants.PDF,
		Method:     "pdf-text",
	}, nil
}

// pageCount asks pdfcpu before rasterizing so MaxPages can cap pdftoppm up
// front instead of rendering pages we will throw away. Failure is a warning,
// not fatal: pdftoppm will still render whatever it can.
func (e *Extractor) pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}

// pdfOCR rasterizes every page and runs tesseract once per configured PSM
// mode. Each PSM pass yields one independent run spanning all pages, so a
// document produces len(PSMModes) runs to pool and vote over.
func (e *Extractor) pdfOCR(ctx context.Context, path string) (Result, error) {
	res := Result{SourceType: constants.PDF, Method: "pdf-ocr"}

	tmpDir, err := os.MkdirTemp("", "nicscan-pp-*")
	if err != nil {
		return res, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		if n, cErr := e.pageCount(path); cErr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page count: %v", cErr))
		} else if n > e.cfg.MaxPages {
			args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
		}
	}
	prefix := filepath.Join(tmpDir, "page")
	args = append(args, path, prefix)

	// pdftoppm -r 300 -png [-f 1 -l N] <in.pdf> <tmp/page>
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		res.Runs = []string{""}
		res.Warnings = append(res.Warnings, string(errb))
		return res, err
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	pages, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(pages)
	if e.cfg.MaxPages > 0 && len(pages) > e.cfg.MaxPages {
		pages = pages[:e.cfg.MaxPages]
	}
	if len(pages) == 0 {
		res.Runs = []string{""}
		res.Warnings = append(res.Warnings, "pdftoppm produced no images")
		return res, fmt.Errorf("no pages rendered")
	}
	res.Pages = len(pages)

	for _, psm := range e.cfg.PSMModes {
		var b strings.Builder
		for _, img := range pages {
			txt, warns, err := e.tesseract(ctx, img, psm)
			if err != nil {
				res.Warnings = append(res.Warnings, err.Error())
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n\f\n") // keep a clear page break marker
			}
			b.WriteString(txt)
			res.Warnings = append(res.Warnings, warns...)
		}
		res.Runs = append(res.Runs, b.String())
	}
	return res, nil
}
