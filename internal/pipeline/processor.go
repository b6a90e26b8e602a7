package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tdesilva/nicscan/constants"
	"github.com/tdesilva/nicscan/internal/nic"
	"github.com/tdesilva/nicscan/internal/repository"
)

// Processor runs the full scan for a stored document and persists the
// outcome: a scan_job row and the ranked identifiers.
type Processor struct {
	Logger   *slog.Logger
	Acquirer Acquirer
	Scanner  *nic.Extractor
	Docs     repository.DocumentRepository
	Jobs     repository.ScanJobRepository
	IDs      repository.IdentifierRepository
}

func NewProcessor(logger *slog.Logger, acq Acquirer, scanner *nic.Extractor,
	docs repository.DocumentRepository, jobs repository.ScanJobRepository,
	ids repository.IdentifierRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Acquirer: acq, Scanner: scanner, Docs: docs, Jobs: jobs, IDs: ids}
}

// ProcessDocument scans one ingested document and stores the result.
// Returns the job ID (uuid.Nil if the job could not even be started).
func (p *Processor) ProcessDocument(ctx context.Context, documentID uuid.UUID) (uuid.UUID, []nic.Result, error) {
	doc, err := p.Docs.GetByID(ctx, documentID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("get document: %w", err)
	}

	format := constants.MapExtToFormat(doc.FileExt)
	if format == "" {
		return uuid.Nil, nil, fmt.Errorf("unsupported format: %s", doc.FileExt)
	}

	job, err := p.Jobs.Start(ctx, doc.ID, format)
	if err != nil {
		return uuid.Nil, nil, err
	}

	outcome, err := ScanPath(ctx, p.Acquirer, p.Scanner, doc.SourcePath, p.Logger)
	if err != nil {
		_ = p.Jobs.FinishFailure(ctx, job.ID, err.Error())
		return job.ID, nil, err
	}

	if err := p.IDs.ReplaceForDocument(ctx, job.ID, doc.ID, outcome.Results); err != nil {
		_ = p.Jobs.FinishFailure(ctx, job.ID, err.Error())
		return job.ID, outcome.Results, err
	}
	if err := p.Jobs.FinishDone(ctx, job.ID, len(outcome.Runs)); err != nil {
		return job.ID, outcome.Results, err
	}

	p.Logger.Info("document scanned",
		"document_id", doc.ID,
		"job_id", job.ID,
		"identifiers", len(outcome.Results),
		"runs", len(outcome.Runs),
		"forced_ocr", outcome.Forced,
	)
	return job.ID, outcome.Results, nil
}
