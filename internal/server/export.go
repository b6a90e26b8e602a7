package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tdesilva/nicscan/internal/common"
)

// handleExport streams all stored identifiers as an XLSX workbook or CSV.
// Query params: format=xlsx|csv (default xlsx), from=YYYY-MM-DD, to=YYYY-MM-DD.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be xlsx or csv")
		return
	}

	v := common.NewValidator().
		Field("from", q.Get("from"), common.Date).
		Field("to", q.Get("to"), common.Date)
	if v.HasErrors() {
		writeError(w, http.StatusBadRequest, v.ErrorMessage())
		return
	}
	from := parseDateParam(q.Get("from"))
	to := parseDateParam(q.Get("to"))

	var (
		buf  []byte
		n    int
		err  error
		mime string
	)
	switch format {
	case "csv":
		buf, n, err = s.exporter.ExportCSV(r.Context(), from, to)
		mime = "text/csv"
	default:
		buf, n, err = s.exporter.ExportXLSX(r.Context(), from, to)
		mime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		s.logger.Error("export failed", zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	name := fmt.Sprintf("identifiers_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("X-Row-Count", fmt.Sprintf("%d", n))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}

func parseDateParam(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
