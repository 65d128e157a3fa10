package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stemsi/typequiz-backend/internal/model"
)

// DBTX is the subset of pgxpool.Pool the repository needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ResultRepository archives scored results in PostgreSQL.
type ResultRepository struct {
	db DBTX
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(db DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// ToArchived converts a stored result into its archive row.
func ToArchived(r *model.StoredResult) (*model.ArchivedResult, error) {
	if r == nil || r.Result == nil {
		return nil, fmt.Errorf("result is empty")
	}
	scores, err := json.Marshal(r.Result.Scores)
	if err != nil {
		return nil, fmt.Errorf("marshal scores: %w", err)
	}
	percentages, err := json.Marshal(r.Result.Percentages)
	if err != nil {
		return nil, fmt.Errorf("marshal percentages: %w", err)
	}

	mode := r.Mode
	if mode == "" {
		mode = "fast"
	}
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &model.ArchivedResult{
		ID:          r.ID,
		Type:        r.Result.Type,
		Mode:        mode,
		Scores:      scores,
		Percentages: percentages,
		Answered:    r.Result.Answered,
		Warning:     r.Result.Warning,
		CreatedAt:   createdAt,
	}, nil
}

// BulkInsert writes rows with a single UNNEST statement. Rows whose id is
// already archived are ignored.
func (r *ResultRepository) BulkInsert(ctx context.Context, rows []*model.ArchivedResult) error {
	if len(rows) == 0 {
		return nil
	}

	n := len(rows)
	ids := make([]uuid.UUID, 0, n)
	types := make([]string, 0, n)
	modes := make([]string, 0, n)
	scores := make([]string, 0, n)
	percentages := make([]string, 0, n)
	answered := make([]int32, 0, n)
	warnings := make([]string, 0, n)
	createdAts := make([]time.Time, 0, n)

	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return fmt.Errorf("parse result id %q: %w", row.ID, err)
		}
		ids = append(ids, id)
		types = append(types, row.Type)
		modes = append(modes, row.Mode)
		scores = append(scores, string(row.Scores))
		percentages = append(percentages, string(row.Percentages))
		answered = append(answered, int32(row.Answered))
		warnings = append(warnings, row.Warning)
		createdAts = append(createdAts, row.CreatedAt)
	}

	query := `
		INSERT INTO quiz_results (id, type, mode, scores, percentages, answered, warning, created_at)
		SELECT u.id, u.type, u.mode, u.scores::jsonb, u.percentages::jsonb, u.answered, u.warning, u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::text[],
			$4::text[],
			$5::text[],
			$6::int[],
			$7::text[],
			$8::timestamptz[]
		) AS u (id, type, mode, scores, percentages, answered, warning, created_at)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.Exec(ctx, query, ids, types, modes, scores, percentages, answered, warnings, createdAts)
	return err
}

// Insert writes a single row.
func (r *ResultRepository) Insert(ctx context.Context, row *model.ArchivedResult) error {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return fmt.Errorf("parse result id %q: %w", row.ID, err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO quiz_results (id, type, mode, scores, percentages, answered, warning, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		id, row.Type, row.Mode, string(row.Scores), string(row.Percentages), row.Answered, row.Warning, row.CreatedAt,
	)
	return err
}

// DailyTypeDistribution counts archived results per UTC day and type over
// the last days days, newest first.
func (r *ResultRepository) DailyTypeDistribution(ctx context.Context, days int) ([]model.DailyTypeCount, error) {
	if days <= 0 {
		days = 1
	}

	rows, err := r.db.Query(ctx,
		`SELECT to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS day,
		        type,
		        COUNT(*)
		 FROM quiz_results
		 WHERE created_at >= NOW() - make_interval(days => $1)
		 GROUP BY day, type
		 ORDER BY day DESC, type`,
		days,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DailyTypeCount
	for rows.Next() {
		var d model.DailyTypeCount
		if err := rows.Scan(&d.Day, &d.Type, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
