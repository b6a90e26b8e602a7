package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tdesilva/nicscan/internal/repository"
)

var headers = []string{
	"Document",
	"Saved As",
	"Identifier",
	"Tier",
	"Occurrences",
	"Scanned At",
}

// Service is a tiny façade over the identifier repository that produces
// XLSX workbooks and CSV files for audit exports.
type Service struct {
	ids    repository.IdentifierRepository
	logger *slog.Logger
}

func NewService(ids repository.IdentifierRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ids: ids, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) for the given scan-time window.
// If only from is provided -> from..now (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> everything.
func (s *Service) ExportXLSX(ctx context.Context, from, to *time.Time) ([]byte, int, error) {
	rows, err := s.list(ctx, from, to)
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	buf, err := BuildXLSX(rows)
	if err != nil {
		return nil, 0, err
	}
	s.logger.Info("export.xlsx.ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf, len(rows), nil
}

// ExportCSV is the same window semantics as ExportXLSX, in CSV form.
func (s *Service) ExportCSV(ctx context.Context, from, to *time.Time) ([]byte, int, error) {
	rows, err := s.list(ctx, from, to)
	if err != nil {
		return nil, 0, err
	}
	buf, err := BuildCSV(rows)
	if err != nil {
		return nil, 0, err
	}
	s.logger.Info("export.csv.ok", "rows", len(rows))
	return buf, len(rows), nil
}

func (s *Service) list(ctx context.Context, from, to *time.Time) ([]repository.ExportRow, error) {
	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		// inclusive end of day
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		now := time.Now().UTC()
		toDate = &now
	}

	rows, err := s.ids.ListForExport(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query identifiers: %w", err)
	}
	return rows, nil
}

// BuildXLSX renders export rows into a single-sheet workbook.
func BuildXLSX(rows []repository.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Identifiers"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// The default sheet is dead weight once ours exists.
	if idx, _ := f.GetSheetIndex("Sheet1"); idx != -1 && sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Filename)
		write(2, r.SourcePath)
		write(3, r.Value)
		write(4, r.Tier)
		write(5, r.Occurrences)
		if !r.ScannedAt.IsZero() {
			write(6, r.ScannedAt.UTC().Format("2006-01-02 15:04:05"))
		} else {
			write(6, "")
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // document
	_ = f.SetColWidth(sheet, "B", "B", 60) // path
	_ = f.SetColWidth(sheet, "C", "C", 18) // identifier
	_ = f.SetColWidth(sheet, "D", "D", 12) // tier
	_ = f.SetColWidth(sheet, "E", "E", 12) // occurrences
	_ = f.SetColWidth(sheet, "F", "F", 20) // scanned at

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildCSV renders export rows as CSV with the same columns as the workbook.
// Rows with an empty Value are kept: a document that yielded nothing still
// shows up in the audit trail.
func BuildCSV(rows []repository.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	for _, r := range rows {
		occ := ""
		if r.Value != "" {
			occ = strconv.Itoa(r.Occurrences)
		}
		scanned := ""
		if !r.ScannedAt.IsZero() {
			scanned = r.ScannedAt.UTC().Format("2006-01-02 15:04:05")
		}
		rec := []string{r.Filename, r.SourcePath, r.Value, r.Tier, occ, scanned}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
