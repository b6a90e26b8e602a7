package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tdesilva/nicscan/internal/async"
	"github.com/tdesilva/nicscan/internal/common"
	"github.com/tdesilva/nicscan/internal/export"
	"github.com/tdesilva/nicscan/internal/ingest"
	"github.com/tdesilva/nicscan/internal/nic"
	"github.com/tdesilva/nicscan/internal/ocr"
	"github.com/tdesilva/nicscan/internal/pipeline"
	"github.com/tdesilva/nicscan/internal/repository"
	"github.com/tdesilva/nicscan/internal/server"
)

func main() {
	// Logger
	zlog, _ := zap.NewProduction()
	defer func() { _ = zlog.Sync() }()
	log := zlog.Sugar()

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(slogger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB pool
	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, slogger)
	if err != nil {
		log.Fatalf("creating DB pool: %v", err)
	}
	defer repository.Close(pool, slogger)

	if err := repository.EnsureSchema(ctx, pool, slogger); err != nil {
		log.Fatalf("applying schema: %v", err)
	}
	if err := repository.HealthCheck(ctx, pool, 3*time.Second, slogger); err != nil {
		log.Fatalf("DB health failed: %v", err)
	}
	log.Infow("DB health OK")

	// Recognition core, with optional anchor overlay
	var extraAnchors []nic.AnchorRule
	if cfg.Scan.AnchorRulesPath != "" {
		extraAnchors, err = nic.LoadAnchorRules(cfg.Scan.AnchorRulesPath)
		if err != nil {
			log.Fatalf("loading anchor rules from %s: %v", cfg.Scan.AnchorRulesPath, err)
		}
		log.Infow("loaded anchor overlay", "path", cfg.Scan.AnchorRulesPath, "rules", len(extraAnchors))
	}
	lib, err := nic.NewLibrary(extraAnchors...)
	if err != nil {
		log.Fatalf("building pattern library: %v", err)
	}
	scanner := nic.NewExtractor(lib, slogger)

	acquirer := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		PSMModes:      cfg.OCR.PSMModes,
	}, slogger)

	// Repositories and services
	docs := repository.NewDocumentRepository(pool, slogger)
	jobs := repository.NewScanJobRepository(pool, slogger)
	ids := repository.NewIdentifierRepository(pool, slogger)

	ingestor := ingest.NewService(docs, slogger)
	processor := pipeline.NewProcessor(slogger, acquirer, scanner, docs, jobs, ids)
	exporter := export.NewService(ids, slogger)

	// Background workers for watcher-discovered documents
	queue := async.NewQueue(processor, slogger,
		async.WithWorkers(cfg.Scan.Workers),
		async.WithQueueSize(cfg.Scan.QueueSize),
		async.WithProcessTimeout(cfg.Scan.ProcessTimeout),
	)

	// Inbox watcher (optional)
	if len(cfg.Watch.Roots) > 0 {
		paths, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Watch.Roots,
			InitialScan: cfg.Watch.InitialScan,
			Debounce:    cfg.Watch.Debounce,
		}, slogger)
		if err != nil {
			log.Fatalf("starting watcher: %v", err)
		}
		go func() {
			for path := range paths {
				r, err := ingestor.IngestPath(ctx, path)
				if err != nil {
					slogger.Warn("watcher ingest failed", "path", path, "error", err)
					continue
				}
				if r.Deduplicated {
					continue
				}
				_ = queue.Enqueue(ctx, async.Job{
					DocumentID:  r.Document.ID,
					SubmittedAt: time.Now().UTC(),
				})
			}
		}()
		go func() {
			for err := range watchErrs {
				slogger.Error("watcher error", "error", err)
			}
		}()
		log.Infow("watching inbox directories", "roots", cfg.Watch.Roots)
	}

	// HTTP server
	srv := server.New(cfg.Server, cfg.OCR, server.Deps{
		Pool:      pool,
		Ingestor:  ingestor,
		Processor: processor,
		Docs:      docs,
		IDs:       ids,
		Exporter:  exporter,
	}, zlog)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("http serve: %v", err)
	}

	log.Info("draining worker queue...")
	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	log.Info("stopped.")
}
