package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"curator/internal/domain"
)

type RunLogStore struct {
	db *sqlx.DB
}

func NewRunLogStore(db *sqlx.DB) *RunLogStore {
	return &RunLogStore{db: db}
}

// Record appends one run to the history.
func (s *RunLogStore) Record(ctx context.Context, rec *domain.RunRecord) error {
	query := `
		INSERT INTO run_log (kind, started_at, finished_at, attempted, succeeded, rejected, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		rec.Kind,
		rec.StartedAt,
		rec.FinishedAt,
		rec.Attempted,
		rec.Succeeded,
		rec.Rejected,
		rec.Errors,
	)
	return err
}

// LastRun returns the most recent run of the given kind, or nil if none.
func (s *RunLogStore) LastRun(ctx context.Context, kind string) (*domain.RunRecord, error) {
	query := `
		SELECT id, kind, started_at, finished_at, attempted, succeeded, rejected, errors
		FROM run_log
		WHERE kind = $1
		ORDER BY started_at DESC
		LIMIT 1`

	var recs []domain.RunRecord
	if err := s.db.SelectContext(ctx, &recs, query, kind); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}
