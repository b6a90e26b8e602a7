package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tdesilva/nicscan/internal/common"
	"github.com/tdesilva/nicscan/internal/export"
	"github.com/tdesilva/nicscan/internal/repository"
)

const maxUploadBytes = 256 << 20 // whole multipart request

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type identifierJSON struct {
	Value       string `json:"value"`
	Tier        string `json:"tier"`
	Occurrences int    `json:"occurrences"`
}

type uploadFileResult struct {
	Filename    string           `json:"filename"`
	SavedAs     string           `json:"saved_as"`
	DocumentID  string           `json:"document_id,omitempty"`
	Identifiers []identifierJSON `json:"identifiers"`
	Error       string           `json:"error,omitempty"`
}

type uploadResponse struct {
	Run     string             `json:"run"`
	Results []uploadFileResult `json:"results"`
	CSVURL  string             `json:"csv_url,omitempty"`
}

// handleUpload accepts one or more files under the "files" multipart field,
// stores them in a per-request run directory, scans each one synchronously,
// and returns the ranked identifiers plus a link to the run's CSV.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided (use the 'files' field)")
		return
	}

	runName := "run_" + time.Now().UTC().Format("20060102_150405")
	runDir := filepath.Join(s.cfg.UploadDir, runName)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		s.logger.Error("failed to create run directory", zap.String("dir", runDir), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	resp := uploadResponse{Run: runName}
	var csvRows []repository.ExportRow

	for i, fh := range files {
		name := sanitizeFilename(fh.Filename)
		savedAs := fmt.Sprintf("%03d__%s", i+1, name)
		dest := filepath.Join(runDir, savedAs)
		res := uploadFileResult{Filename: fh.Filename, SavedAs: savedAs, Identifiers: []identifierJSON{}}

		if err := saveMultipartFile(fh, dest); err != nil {
			res.Error = err.Error()
			resp.Results = append(resp.Results, res)
			continue
		}

		ing, err := s.ingestor.IngestPath(r.Context(), dest)
		if err != nil {
			res.Error = err.Error()
			resp.Results = append(resp.Results, res)
			continue
		}
		res.DocumentID = ing.Document.ID.String()

		_, results, err := s.processor.ProcessDocument(r.Context(), ing.Document.ID)
		if err != nil {
			s.logger.Warn("scan failed for upload",
				zap.String("request_id", common.RequestIDFromContext(r.Context())),
				zap.String("file", fh.Filename), zap.Error(err))
			res.Error = err.Error()
			resp.Results = append(resp.Results, res)
			continue
		}

		now := time.Now().UTC()
		if len(results) == 0 {
			// Document still shows up in the run CSV.
			csvRows = append(csvRows, repository.ExportRow{
				Filename: fh.Filename, SourcePath: dest, ScannedAt: now,
			})
		}
		for _, id := range results {
			res.Identifiers = append(res.Identifiers, identifierJSON{
				Value: id.Value, Tier: string(id.Tier), Occurrences: id.Count,
			})
			csvRows = append(csvRows, repository.ExportRow{
				Filename: fh.Filename, SourcePath: dest,
				Value: id.Value, Tier: string(id.Tier), Occurrences: id.Count,
				ScannedAt: now,
			})
		}
		resp.Results = append(resp.Results, res)
	}

	if url, err := s.writeRunCSV(runName, csvRows); err != nil {
		s.logger.Error("failed to write run CSV", zap.String("run", runName), zap.Error(err))
	} else {
		resp.CSVURL = url
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeRunCSV(runName string, rows []repository.ExportRow) (string, error) {
	buf, err := export.BuildCSV(rows)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return "", err
	}
	name := runName + ".csv"
	if err := os.WriteFile(filepath.Join(s.cfg.OutputDir, name), buf, 0o644); err != nil {
		return "", err
	}
	return "/outputs/" + name, nil
}

func saveMultipartFile(fh *multipart.FileHeader, dest string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == ".." {
		base = "upload"
	}
	return base
}
