package entity

import (
	"time"

	"github.com/google/uuid"
)

// ScanJob represents one recognition attempt over a document.
type ScanJob struct {
	ID           uuid.UUID  `json:"id"`
	DocumentID   uuid.UUID  `json:"document_id"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	RunCount     int        `json:"run_count"`
}
