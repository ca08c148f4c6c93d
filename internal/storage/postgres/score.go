package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"curator/internal/domain"
)

type ScoreStore struct {
	db *sqlx.DB
}

func NewScoreStore(db *sqlx.DB) *ScoreStore {
	return &ScoreStore{db: db}
}

// Upsert writes the 1:1 scoring result for an item. Re-scoring replaces
// the previous record wholesale; map-valued factors go into JSONB columns
// so a score stays auditable after the tables change.
func (s *ScoreStore) Upsert(ctx context.Context, rec *domain.ScoreRecord) error {
	themes, err := json.Marshal(rec.ThemeScores)
	if err != nil {
		return fmt.Errorf("marshal theme scores: %w", err)
	}
	signals, err := json.Marshal(rec.NarrativeSignals)
	if err != nil {
		return fmt.Errorf("marshal narrative signals: %w", err)
	}
	multipliers, err := json.Marshal(rec.MultipliersApplied)
	if err != nil {
		return fmt.Errorf("marshal multipliers: %w", err)
	}

	query := `
		INSERT INTO score_records (
			item_id, theme_scores, narrative_signals,
			roi_data_present, performance_metrics_present,
			methodology_present, case_study_present,
			multipliers_applied, composite_score, confidence,
			primary_theme, scored_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		ON CONFLICT (item_id) DO UPDATE SET
			theme_scores = EXCLUDED.theme_scores,
			narrative_signals = EXCLUDED.narrative_signals,
			roi_data_present = EXCLUDED.roi_data_present,
			performance_metrics_present = EXCLUDED.performance_metrics_present,
			methodology_present = EXCLUDED.methodology_present,
			case_study_present = EXCLUDED.case_study_present,
			multipliers_applied = EXCLUDED.multipliers_applied,
			composite_score = EXCLUDED.composite_score,
			confidence = EXCLUDED.confidence,
			primary_theme = EXCLUDED.primary_theme,
			scored_at = EXCLUDED.scored_at`

	exec := GetExecutor(ctx, s.db)
	_, err = exec.ExecContext(ctx, query,
		rec.ItemID,
		themes,
		signals,
		rec.ROIDataPresent,
		rec.PerformanceMetricsPresent,
		rec.MethodologyPresent,
		rec.CaseStudyPresent,
		multipliers,
		rec.CompositeScore,
		rec.Confidence,
		rec.PrimaryTheme,
		rec.ScoredAt,
	)
	return err
}

// GetByItemID loads the score for one item, decoding the JSONB factors.
func (s *ScoreStore) GetByItemID(ctx context.Context, itemID int64) (*domain.ScoreRecord, error) {
	query := `
		SELECT item_id, theme_scores, narrative_signals,
		       roi_data_present, performance_metrics_present,
		       methodology_present, case_study_present,
		       multipliers_applied, composite_score, confidence,
		       primary_theme, scored_at
		FROM score_records
		WHERE item_id = $1`

	var row struct {
		ItemID                    int64     `db:"item_id"`
		ThemeScores               []byte    `db:"theme_scores"`
		NarrativeSignals          []byte    `db:"narrative_signals"`
		ROIDataPresent            bool      `db:"roi_data_present"`
		PerformanceMetricsPresent bool      `db:"performance_metrics_present"`
		MethodologyPresent        bool      `db:"methodology_present"`
		CaseStudyPresent          bool      `db:"case_study_present"`
		MultipliersApplied        []byte    `db:"multipliers_applied"`
		CompositeScore            float64   `db:"composite_score"`
		Confidence                float64   `db:"confidence"`
		PrimaryTheme              string    `db:"primary_theme"`
		ScoredAt                  time.Time `db:"scored_at"`
	}
	if err := s.db.GetContext(ctx, &row, query, itemID); err != nil {
		return nil, err
	}

	rec := &domain.ScoreRecord{
		ItemID:                    row.ItemID,
		ROIDataPresent:            row.ROIDataPresent,
		PerformanceMetricsPresent: row.PerformanceMetricsPresent,
		MethodologyPresent:        row.MethodologyPresent,
		CaseStudyPresent:          row.CaseStudyPresent,
		CompositeScore:            row.CompositeScore,
		Confidence:                row.Confidence,
		PrimaryTheme:              row.PrimaryTheme,
		ScoredAt:                  row.ScoredAt,
	}
	if err := json.Unmarshal(row.ThemeScores, &rec.ThemeScores); err != nil {
		return nil, fmt.Errorf("unmarshal theme scores: %w", err)
	}
	if err := json.Unmarshal(row.NarrativeSignals, &rec.NarrativeSignals); err != nil {
		return nil, fmt.Errorf("unmarshal narrative signals: %w", err)
	}
	if err := json.Unmarshal(row.MultipliersApplied, &rec.MultipliersApplied); err != nil {
		return nil, fmt.Errorf("unmarshal multipliers: %w", err)
	}
	return rec, nil
}
