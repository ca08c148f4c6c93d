package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"curator/internal/domain"
)

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

// Insert stores a content item. On a canonical_url conflict nothing is
// written and inserted is false; the caller treats that as a duplicate,
// not an error.
func (s *ContentStore) Insert(ctx context.Context, item *domain.ContentItem) (int64, bool, error) {
	query := `
		INSERT INTO content_items (
			canonical_url, source_domain, source_name, title, raw_text,
			summary, published_at, fetched_at, language, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		ON CONFLICT (canonical_url) DO NOTHING
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		item.CanonicalURL,
		item.SourceDomain,
		item.SourceName,
		item.Title,
		item.RawText,
		item.Summary,
		item.PublishedAt,
		item.FetchedAt,
		item.Language,
		item.Status,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	item.ID = id
	return id, true, nil
}

func (s *ContentStore) GetByID(ctx context.Context, id int64) (*domain.ContentItem, error) {
	var item domain.ContentItem
	query := `
		SELECT id, canonical_url, source_domain, source_name, title, raw_text,
		       summary, published_at, fetched_at, language, status
		FROM content_items
		WHERE id = $1`

	if err := s.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByStatus returns up to limit items in the given state, oldest
// fetched first so a backlog drains in order.
func (s *ContentStore) ListByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.ContentItem, error) {
	query := `
		SELECT id, canonical_url, source_domain, source_name, title, raw_text,
		       summary, published_at, fetched_at, language, status
		FROM content_items
		WHERE status = $1
		ORDER BY fetched_at ASC
		LIMIT $2`

	var items []domain.ContentItem
	err := s.db.SelectContext(ctx, &items, query, status, limit)
	return items, err
}

// UpdateStatus advances an item's lifecycle state. Statuses only move
// forward and discarded is terminal; a backward transition is an error.
// It participates in an ambient transaction when one is on the context.
func (s *ContentStore) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	exec := GetExecutor(ctx, s.db)

	var current domain.Status
	err := exec.QueryRowxContext(ctx,
		"SELECT status FROM content_items WHERE id = $1", id,
	).Scan(&current)
	if err != nil {
		return err
	}
	if !current.CanAdvanceTo(status) {
		return fmt.Errorf("item %d: status %s cannot advance to %s", id, current, status)
	}

	_, err = exec.ExecContext(ctx,
		"UPDATE content_items SET status = $1 WHERE id = $2",
		status, id,
	)
	return err
}
