package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tdesilva/nicscan/internal/common"
	"github.com/tdesilva/nicscan/internal/entity"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.Document, error)
	Create(ctx context.Context, doc *entity.Document) error
	// UpsertByHash returns the existing row when the content hash is already
	// known (dedup=true), otherwise inserts doc.
	UpsertByHash(ctx context.Context, doc *entity.Document) (*entity.Document, bool, error)
}

type documentRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepo{pool: pool, logger: logger}
}

const documentCols = "id, source_path, filename, file_ext, file_size, content_hash, uploaded_at"

func scanDocument(row interface{ Scan(...any) error }) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(&d.ID, &d.SourcePath, &d.Filename, &d.FileExt, &d.FileSize, &d.ContentHash, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+documentCols+" FROM documents WHERE id = $1", id)
	return scanDocument(row)
}

func (r *documentRepo) GetByHash(ctx context.Context, hash []byte) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+documentCols+" FROM documents WHERE content_hash = $1", hash)
	return scanDocument(row)
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (`+documentCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.SourcePath, doc.Filename, doc.FileExt, doc.FileSize, doc.ContentHash, doc.UploadedAt)
	if err != nil {
		r.logger.Error("failed to create document", "source_path", doc.SourcePath, "error", err)
	}
	return err
}

func (r *documentRepo) UpsertByHash(ctx context.Context, doc *entity.Document) (*entity.Document, bool, error) {
	if existing, err := r.GetByHash(ctx, doc.ContentHash); err == nil {
		return existing, true, nil
	}
	if err := r.Create(ctx, doc); err != nil {
		return nil, false, err
	}
	return doc, false, nil
}
