package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/tdesilva/nicscan/constants"
)

// Identifier is one ranked canonical identifier persisted for a document.
// Position preserves the rank order the core produced.
type Identifier struct {
	ID          uuid.UUID      `json:"id"`
	JobID       uuid.UUID      `json:"job_id"`
	DocumentID  uuid.UUID      `json:"document_id"`
	Value       string         `json:"value"`
	Tier        constants.Tier `json:"tier"`
	Occurrences int            `json:"occurrences"`
	Position    int            `json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
}
