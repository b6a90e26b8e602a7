package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdesilva/nicscan/constants"
	"github.com/tdesilva/nicscan/internal/entity"
	"github.com/tdesilva/nicscan/internal/nic"
)

// ExportRow joins an identifier with its document for audit export.
type ExportRow struct {
	Filename    string
	SourcePath  string
	Value       string
	Tier        string
	Occurrences int
	ScannedAt   time.Time
}

type IdentifierRepository interface {
	// ReplaceForDocument swaps the document's identifiers for the ranked
	// results of the given job, preserving rank order in position.
	ReplaceForDocument(ctx context.Context, jobID, documentID uuid.UUID, results []nic.Result) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Identifier, error)
	// ListForExport returns identifier rows joined with their documents,
	// optionally bounded by scan time (inclusive).
	ListForExport(ctx context.Context, from, to *time.Time) ([]ExportRow, error)
}

type identifierRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewIdentifierRepository(pool *pgxpool.Pool, logger *slog.Logger) IdentifierRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &identifierRepo{pool: pool, logger: logger}
}

func (r *identifierRepo) ReplaceForDocument(ctx context.Context, jobID, documentID uuid.UUID, results []nic.Result) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM identifiers WHERE document_id = $1`, documentID); err != nil {
		r.logger.Error("failed to clear identifiers", "document_id", documentID, "error", err)
		return err
	}
	now := time.Now().UTC()
	for i, res := range results {
		_, err := tx.Exec(ctx,
			`INSERT INTO identifiers (id, job_id, document_id, value, tier, occurrences, position, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), jobID, documentID, res.Value, string(res.Tier), res.Count, i, now)
		if err != nil {
			r.logger.Error("failed to insert identifier", "document_id", documentID, "value", res.Value, "error", err)
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *identifierRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.Identifier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, job_id, document_id, value, tier, occurrences, position, created_at
		 FROM identifiers WHERE document_id = $1 ORDER BY position`, documentID)
	if err != nil {
		r.logger.Error("failed to list identifiers", "document_id", documentID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Identifier
	for rows.Next() {
		var (
			id      entity.Identifier
			rawTier string
		)
		if err := rows.Scan(&id.ID, &id.JobID, &id.DocumentID, &id.Value, &rawTier,
			&id.Occurrences, &id.Position, &id.CreatedAt); err != nil {
			return nil, err
		}
		tier, ok := constants.ParseTier(rawTier)
		if !ok {
			r.logger.Warn("identifier row has unknown tier", "identifier_id", id.ID, "tier", rawTier)
			tier = constants.Tier(rawTier)
		}
		id.Tier = tier
		out = append(out, &id)
	}
	return out, rows.Err()
}

func (r *identifierRepo) ListForExport(ctx context.Context, from, to *time.Time) ([]ExportRow, error) {
	q := `SELECT d.filename, d.source_path, i.value, i.tier, i.occurrences, i.created_at
	      FROM identifiers i JOIN documents d ON d.id = i.document_id`
	var args []any
	switch {
	case from != nil && to != nil:
		q += ` WHERE i.created_at >= $1 AND i.created_at <= $2`
		args = append(args, *from, *to)
	case from != nil:
		q += ` WHERE i.created_at >= $1`
		args = append(args, *from)
	case to != nil:
		q += ` WHERE i.created_at <= $1`
		args = append(args, *to)
	}
	q += ` ORDER BY i.created_at, d.filename, i.position`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to query export rows", "error", err)
		return nil, err
	}
	defer rows.Close()

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExportRow, error) {
		var e ExportRow
		err := row.Scan(&e.Filename, &e.SourcePath, &e.Value, &e.Tier, &e.Occurrences, &e.ScannedAt)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
