package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdesilva/nicscan/internal/common"
)

type documentIdentifiersResponse struct {
	DocumentID  string           `json:"document_id"`
	Filename    string           `json:"filename"`
	Identifiers []identifierJSON `json:"identifiers"`
	UploadedAt  string           `json:"uploaded_at"`
}

// handleIdentifiers returns the stored ranked identifiers for one document.
func (s *Server) handleIdentifiers(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	v := common.NewValidator().Field("id", raw, common.Required, common.UUID)
	if v.HasErrors() {
		writeError(w, http.StatusBadRequest, v.ErrorMessage())
		return
	}
	id := uuid.MustParse(raw)

	doc, err := s.docs.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		s.logger.Error("failed to load document", zap.String("document_id", raw), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	rows, err := s.ids.ListByDocument(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to list identifiers", zap.String("document_id", raw), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load identifiers")
		return
	}

	resp := documentIdentifiersResponse{
		DocumentID:  doc.ID.String(),
		Filename:    doc.Filename,
		Identifiers: []identifierJSON{},
		UploadedAt:  doc.UploadedAt.UTC().Format(time.RFC3339),
	}
	for _, row := range rows {
		resp.Identifiers = append(resp.Identifiers, identifierJSON{
			Value:       row.Value,
			Tier:        string(row.Tier),
			Occurrences: row.Occurrences,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
