package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/tdesilva/nicscan/internal/nic"
	"github.com/tdesilva/nicscan/internal/ocr"
	"github.com/tdesilva/nicscan/internal/pipeline"
)

// nicscan scans files on the command line and prints ranked identifiers as
// JSON, one object per file. No database required.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	anchorPath := flag.String("anchors", "", "optional JSON file with extra anchor patterns")
	timeout := flag.Duration("timeout", 2*time.Minute, "per-file scan timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		logger.Error("usage", "cmd", "nicscan [-anchors rules.json] <file> [file...]")
		os.Exit(2)
	}

	var extra []nic.AnchorRule
	if *anchorPath != "" {
		var err error
		extra, err = nic.LoadAnchorRules(*anchorPath)
		if err != nil {
			logger.Error("loading anchor rules", "path", *anchorPath, "error", err)
			os.Exit(1)
		}
	}
	lib, err := nic.NewLibrary(extra...)
	if err != nil {
		logger.Error("building pattern library", "error", err)
		os.Exit(1)
	}
	scanner := nic.NewExtractor(lib, logger)
	acquirer := ocr.NewExtractor(ocr.Config{}, logger)

	type fileOutput struct {
		Path        string       `json:"path"`
		Identifiers []nic.Result `json:"identifiers"`
		ForcedOCR   bool         `json:"forced_ocr"`
		Error       string       `json:"error,omitempty"`
	}

	enc := json.NewEncoder(os.Stdout)
	exitCode := 0
	for _, path := range flag.Args() {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		outcome, err := pipeline.ScanPath(ctx, acquirer, scanner, path, logger)
		cancel()

		out := fileOutput{Path: path, Identifiers: outcome.Results, ForcedOCR: outcome.Forced}
		if out.Identifiers == nil {
			out.Identifiers = []nic.Result{}
		}
		if err != nil {
			out.Error = err.Error()
			exitCode = 1
		}
		_ = enc.Encode(out)
	}
	os.Exit(exitCode)
}
