package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"curator/internal/domain"
)

type InsightStore struct {
	db *sqlx.DB
}

func NewInsightStore(db *sqlx.DB) *InsightStore {
	return &InsightStore{db: db}
}

// Replace swaps an item's insights for the given set. Delete-then-insert
// keeps re-scoring idempotent; callers run it inside a transaction
// alongside the score upsert.
func (s *InsightStore) Replace(ctx context.Context, itemID int64, insights []domain.Insight) error {
	exec := GetExecutor(ctx, s.db)

	_, err := exec.ExecContext(ctx,
		"DELETE FROM insights WHERE item_id = $1",
		itemID,
	)
	if err != nil {
		return err
	}

	if len(insights) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO insights (
		item_id, type, title, body, extracted_value, is_actionable, confidence
	) VALUES `)
	args := make([]interface{}, 0, len(insights)*7)

	for i, ins := range insights {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < 7; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*7 + j + 1))
		}
		sb.WriteString(")")
		args = append(args,
			itemID,
			ins.Type,
			ins.Title,
			ins.Body,
			ins.ExtractedValue,
			ins.IsActionable,
			ins.Confidence,
		)
	}

	_, err = exec.ExecContext(ctx, sb.String(), args...)
	return err
}

// ListByItemID returns an item's insights in extraction order.
func (s *InsightStore) ListByItemID(ctx context.Context, itemID int64) ([]domain.Insight, error) {
	query := `
		SELECT id, item_id, type, title, body, extracted_value, is_actionable, confidence
		FROM insights
		WHERE item_id = $1
		ORDER BY id ASC`

	var insights []domain.Insight
	err := s.db.SelectContext(ctx, &insights, query, itemID)
	return insights, err
}
