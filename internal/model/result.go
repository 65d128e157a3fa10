package model

import (
	"encoding/json"
	"time"

	"github.com/stemsi/typequiz-backend/internal/personality"
)

// StoredResult is a scored submission persisted for sharing.
type StoredResult struct {
	ID        string              `json:"id"`
	Mode      string              `json:"mode,omitempty"`
	Result    *personality.Result `json:"result"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// Expired reports whether the result is past its expiry at now.
func (r *StoredResult) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// SubmitResponse is returned after a successful submission. ID is empty
// when the result could not be stored.
type SubmitResponse struct {
	ID        string              `json:"id"`
	Result    *personality.Result `json:"result"`
	ExpiresAt *time.Time          `json:"expires_at,omitempty"`
}

// ArchivedResult is the row shape of the quiz_results table.
type ArchivedResult struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Mode        string          `json:"mode"`
	Scores      json.RawMessage `json:"scores"`
	Percentages json.RawMessage `json:"percentages"`
	Answered    int             `json:"answered"`
	Warning     string          `json:"warning"`
	CreatedAt   time.Time       `json:"created_at"`
}
