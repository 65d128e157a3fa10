// Package store persists shared quiz results and the tests-taken counters.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/stemsi/typequiz-backend/internal/model"
)

// ErrNotFound is returned when a result does not exist or has expired.
var ErrNotFound = errors.New("result not found")

// ResultStore keeps scored results for a limited time.
type ResultStore interface {
	Save(ctx context.Context, r *model.StoredResult, ttl time.Duration) error
	Get(ctx context.Context, id string) (*model.StoredResult, error)
}

// Counter tracks how many quizzes were scored, in total and per type.
type Counter interface {
	Increment(ctx context.Context, personalityType string) (int64, error)
	Total(ctx context.Context) (int64, error)
	TypeCounts(ctx context.Context) (map[string]int64, error)
}

// Store is a backend providing both results and counters.
type Store interface {
	ResultStore
	Counter
}
