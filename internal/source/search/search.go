// Package search turns programmable-search API results into ingestion
// candidates. Each configured query becomes one API call; results carry
// no publish timestamp, so the freshness gate relies entirely on page
// metadata for these candidates.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"curator/internal/config"
	"curator/internal/domain"
)

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

type apiResponse struct {
	Items []apiItem `json:"items"`
}

type apiItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type Source struct {
	httpClient *http.Client
	cfg        config.SearchConfig
	logger     *slog.Logger
}

func New(cfg config.SearchConfig, timeout time.Duration, logger *slog.Logger) *Source {
	return &Source{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
		logger:     logger.With("source", "search"),
	}
}

func (s *Source) ID() string   { return "search" }
func (s *Source) Name() string { return s.cfg.Endpoint }

// Candidates runs every configured query. A failed query is logged and
// skipped; the remaining queries still contribute.
func (s *Source) Candidates(ctx context.Context) ([]domain.Candidate, error) {
	var out []domain.Candidate

	for _, query := range s.cfg.Queries {
		items, err := s.runQuery(ctx, query)
		if err != nil {
			s.logger.Warn("query failed", "query", query, "error", err)
			continue
		}
		for _, item := range items {
			if item.Link == "" {
				continue
			}
			out = append(out, domain.Candidate{
				URL:   item.Link,
				Title: item.Title,
			})
		}
	}

	return out, nil
}

func (s *Source) runQuery(ctx context.Context, query string) ([]apiItem, error) {
	params := url.Values{}
	params.Set("key", s.cfg.APIKey)
	params.Set("cx", s.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", fmt.Sprintf("%d", s.cfg.PerQuery))
	reqURL := s.cfg.Endpoint + "?" + params.Encode()

	var resp *apiResponse
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err = s.doRequest(ctx, reqURL)
		if err == nil {
			return resp.Items, nil
		}

		if attempt == maxAttempts {
			break
		}

		backoff := calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, reqURL string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &apiResp, nil
}

func calculateBackoff(attempt int) time.Duration {
	backoff := initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}
