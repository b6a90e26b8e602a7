package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdesilva/nicscan/constants"
	"github.com/tdesilva/nicscan/internal/entity"
)

type ScanJobRepository interface {
	// Start inserts a RUNNING job for the document.
	Start(ctx context.Context, documentID uuid.UUID, format string) (*entity.ScanJob, error)
	FinishDone(ctx context.Context, jobID uuid.UUID, runCount int) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error)
}

type scanJobRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewScanJobRepository(pool *pgxpool.Pool, logger *slog.Logger) ScanJobRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &scanJobRepo{pool: pool, logger: logger}
}

func (r *scanJobRepo) Start(ctx context.Context, documentID uuid.UUID, format string) (*entity.ScanJob, error) {
	job := &entity.ScanJob{
		ID:         uuid.New(),
		DocumentID: documentID,
		Format:     format,
		Status:     string(constants.JobStatusRunning),
		StartedAt:  time.Now().UTC(),
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO scan_jobs (id, document_id, format, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.DocumentID, job.Format, job.Status, job.StartedAt)
	if err != nil {
		r.logger.Error("failed to start scan job", "document_id", documentID, "error", err)
		return nil, err
	}
	return job, nil
}

func (r *scanJobRepo) FinishDone(ctx context.Context, jobID uuid.UUID, runCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scan_jobs SET status = $2, finished_at = $3, run_count = $4 WHERE id = $1`,
		jobID, string(constants.JobStatusDone), time.Now().UTC(), runCount)
	if err != nil {
		r.logger.Error("failed to finish scan job", "job_id", jobID, "error", err)
	}
	return err
}

func (r *scanJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scan_jobs SET status = $2, finished_at = $3, error_message = $4 WHERE id = $1`,
		jobID, string(constants.JobStatusFailed), time.Now().UTC(), message)
	if err != nil {
		r.logger.Error("failed to mark scan job failed", "job_id", jobID, "error", err)
	}
	return err
}

func (r *scanJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error) {
	var j entity.ScanJob
	err := r.pool.QueryRow(ctx,
		`SELECT id, document_id, format, status, started_at, finished_at, error_message, run_count
		 FROM scan_jobs WHERE id = $1`, id).
		Scan(&j.ID, &j.DocumentID, &j.Format, &j.Status, &j.StartedAt, &j.FinishedAt, &j.ErrorMessage, &j.RunCount)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
