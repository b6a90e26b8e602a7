package server

import (
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	"github.com/tdesilva/nicscan/internal/repository"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Binaries map[string]string `json:"binaries"`
}

// handleHealth reports database reachability and whether the external
// acquisition binaries resolve on PATH.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Binaries: map[string]string{},
	}

	if s.pool != nil {
		if err := repository.HealthCheck(r.Context(), s.pool, 2*time.Second, slog.Default()); err != nil {
			resp.Database = err.Error()
			resp.Status = "degraded"
		}
	} else {
		resp.Database = "not configured"
	}

	for name, bin := range map[string]string{
		"pdftotext": s.ocrCfg.Pdftotext,
		"pdftoppm":  s.ocrCfg.Pdftoppm,
		"tesseract": s.ocrCfg.Tesseract,
	} {
		if _, err := exec.LookPath(bin); err != nil {
			resp.Binaries[name] = "missing"
			resp.Status = "degraded"
		} else {
			resp.Binaries[name] = "ok"
		}
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}
