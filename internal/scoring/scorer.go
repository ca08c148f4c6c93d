package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"curator/internal/config"
	"curator/internal/domain"
)

// Service batches fetched items through the analyzers and persists the
// results. Items with at least one theme and enough confidence move to
// scored; items with an empty theme map are discarded explicitly; items
// that fail mid-flight keep their status and retry next run.
type Service struct {
	tables    *Tables
	store     ContentStore
	scores    ScoreStore
	insights  InsightStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
	cfg       config.ScoringConfig
	now       func() time.Time
}

func NewService(
	tables *Tables,
	store ContentStore,
	scores ScoreStore,
	insights InsightStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.ScoringConfig,
) *Service {
	return &Service{
		tables:    tables,
		store:     store,
		scores:    scores,
		insights:  insights,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("component", "scoring"),
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) Run(ctx context.Context) (*domain.ScoreStats, error) {
	start := s.now()
	stats := &domain.ScoreStats{}

	items, err := s.store.ListByStatus(ctx, domain.StatusFetched, s.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("list fetched items: %w", err)
	}
	stats.Batch = len(items)
	s.logger.Info("scoring batch", "items", len(items))

	for i := range items {
		item := &items[i]
		if err := s.scoreOne(ctx, item, stats); err != nil {
			stats.Errors++
			s.logger.Error("scoring item failed",
				"item_id", item.ID,
				"url", item.CanonicalURL,
				"error", err,
			)
		}
	}

	stats.Duration = s.now().Sub(start)
	s.logger.Info("scoring run complete",
		"batch", stats.Batch,
		"scored", stats.Scored,
		"discarded", stats.Discarded,
		"insights", stats.Insights,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (s *Service) scoreOne(ctx context.Context, item *domain.ContentItem, stats *domain.ScoreStats) error {
	rec, insights := s.tables.Compose(item.Title, item.RawText, item.SourceName)
	rec.ItemID = item.ID
	rec.ScoredAt = s.now().UTC()

	if len(rec.ThemeScores) == 0 || rec.Confidence < s.cfg.ConfidenceFloor {
		if err := s.store.UpdateStatus(ctx, item.ID, domain.StatusDiscarded); err != nil {
			return fmt.Errorf("discard item: %w", err)
		}
		stats.Discarded++
		return nil
	}

	for i := range insights {
		insights[i].ItemID = item.ID
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.scores.Upsert(txCtx, rec); err != nil {
			return fmt.Errorf("upsert score: %w", err)
		}
		if err := s.insights.Replace(txCtx, item.ID, insights); err != nil {
			return fmt.Errorf("replace insights: %w", err)
		}
		if err := s.store.UpdateStatus(txCtx, item.ID, domain.StatusScored); err != nil {
			return fmt.Errorf("mark scored: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	stats.Scored++
	stats.Insights += len(insights)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, item, rec); err != nil {
			s.logger.Warn("publish failed", "item_id", item.ID, "error", err)
		} else {
			stats.Published++
		}
	}
	return nil
}
