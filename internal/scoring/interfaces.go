package scoring

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"curator/internal/domain"
)

type ContentStore interface {
	ListByStatus(ctx context.Context, status domain.Status, limit int) ([]domain.ContentItem, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
}

type ScoreStore interface {
	Upsert(ctx context.Context, rec *domain.ScoreRecord) error
}

type InsightStore interface {
	Replace(ctx context.Context, itemID int64, insights []domain.Insight) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, item *domain.ContentItem, rec *domain.ScoreRecord) error
	Close() error
}
