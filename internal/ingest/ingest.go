package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tdesilva/nicscan/constants"
	"github.com/tdesilva/nicscan/internal/entity"
	"github.com/tdesilva/nicscan/internal/repository"
)

// Result is the per-file ingest outcome.
type Result struct {
	Document     *entity.Document
	Deduplicated bool
	HashHex      string
}

// Service registers source files as documents, deduplicating by content hash
// so the same scan uploaded twice (or re-discovered by the watcher) is not
// processed again.
type Service struct {
	Docs        repository.DocumentRepository
	AllowedExts map[string]struct{}
	Logger      *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Docs: docs, Logger: logger}
}

func (s *Service) allowed(ext string) bool {
	allow := s.AllowedExts
	if allow == nil {
		allow = constants.AllowedExtensions
	}
	_, ok := allow[constants.NormalizeExt(ext)]
	return ok
}

// IngestPath registers one file.
func (s *Service) IngestPath(ctx context.Context, path string) (Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, fmt.Errorf("abs path: %w", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !s.allowed(ext) {
		return Result{}, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return Result{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return Result{}, fmt.Errorf("hash: %w", err)
	}
	sum := h.Sum(nil)

	doc := &entity.Document{
		ID:          uuid.New(),
		SourcePath:  abs,
		Filename:    filepath.Base(abs),
		FileExt:     ext,
		FileSize:    size,
		ContentHash: sum,
		UploadedAt:  time.Now().UTC(),
	}
	row, dedup, err := s.Docs.UpsertByHash(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	if dedup {
		s.Logger.Debug("document already known", "path", abs, "document_id", row.ID)
	}
	return Result{Document: row, Deduplicated: dedup, HashHex: hex.EncodeToString(sum)}, nil
}
