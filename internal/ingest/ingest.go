// Package ingest drives one ingestion run: it walks every configured
// source, pushes candidates through the URL, metadata, freshness, length
// and language gates, and upserts survivors into the content store under
// the run, per-domain and per-source quotas.
package ingest

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"curator/internal/config"
	"curator/internal/domain"
	"curator/internal/extract"
	"curator/internal/gate"
	"curator/internal/language"
	"curator/internal/urlnorm"
)

type Orchestrator struct {
	sources   []Source
	fetcher   Fetcher
	extractor Extractor
	lang      LanguageDetector
	store     ContentStore
	runLog    RunLogStore
	freshness gate.Freshness
	logger    *slog.Logger
	cfg       config.IngestConfig
	now       func() time.Time
}

func NewOrchestrator(
	sources []Source,
	fetcher Fetcher,
	extractor Extractor,
	lang LanguageDetector,
	store ContentStore,
	runLog RunLogStore,
	logger *slog.Logger,
	cfg config.IngestConfig,
) *Orchestrator {
	return &Orchestrator{
		sources:   sources,
		fetcher:   fetcher,
		extractor: extractor,
		lang:      lang,
		store:     store,
		runLog:    runLog,
		freshness: gate.NewFreshness(cfg.FreshnessWindow),
		logger:    logger.With("component", "ingest"),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run executes one ingestion pass. Per-candidate and per-source failures
// are counted, never fatal; only store errors abort. Reaching the global
// run cap halts all remaining sources immediately.
func (o *Orchestrator) Run(ctx context.Context) (*domain.IngestStats, error) {
	start := o.now()
	stats := domain.NewIngestStats()
	stats.Sources = len(o.sources)

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.RunDeadline)
	defer cancel()

	rc := NewRunContext(o.cfg.RunCap, o.cfg.PerDomainCap)
	collector := &statsCollector{stats: stats}

	o.logger.Info("starting ingest run",
		"sources", len(o.sources),
		"run_cap", o.cfg.RunCap,
		"per_domain_cap", o.cfg.PerDomainCap,
		"top_k", o.cfg.PerSourceTopK,
	)

	for _, src := range o.sources {
		if runCtx.Err() != nil {
			o.logger.Warn("run deadline reached, skipping remaining sources")
			break
		}
		if rc.Exhausted() {
			o.logger.Info("run quota exhausted, halting remaining sources")
			break
		}
		o.runSource(runCtx, src, rc, collector, cancel)
	}

	stats.Inserted = rc.Inserted()
	stats.PerDomain = rc.PerDomain()
	stats.Duration = o.now().Sub(start)

	o.logger.Info("ingest run complete",
		"attempted", stats.Attempted,
		"inserted", stats.Inserted,
		"rejected", stats.RejectedTotal(),
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	if o.runLog != nil {
		rec := &domain.RunRecord{
			Kind:       "ingest",
			StartedAt:  start.UTC(),
			FinishedAt: o.now().UTC(),
			Attempted:  stats.Attempted,
			Succeeded:  stats.Inserted,
			Rejected:   stats.RejectedTotal(),
			Errors:     stats.Errors,
		}
		if err := o.runLog.Record(ctx, rec); err != nil {
			o.logger.Warn("record run failed", "error", err)
		}
	}

	return stats, nil
}

func (o *Orchestrator) runSource(ctx context.Context, src Source, rc *RunContext, collector *statsCollector, halt context.CancelFunc) {
	logger := o.logger.With("source", src.ID())

	candidates, err := src.Candidates(ctx)
	if err != nil {
		logger.Error("source failed", "error", err)
		collector.fail()
		return
	}

	candidates = o.topKUnique(candidates, rc)
	logger.Debug("source candidates", "count", len(candidates))

	jobs := make(chan domain.Candidate)
	var wg sync.WaitGroup
	workers := o.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range jobs {
				o.process(ctx, cand, rc, collector, logger, halt)
			}
		}()
	}

	for _, cand := range candidates {
		if ctx.Err() != nil || rc.Exhausted() {
			break
		}
		jobs <- cand
	}
	close(jobs)
	wg.Wait()
}

// topKUnique canonicalizes and takes the first K candidates not yet seen
// this run, implementing the per-source quota.
func (o *Orchestrator) topKUnique(candidates []domain.Candidate, rc *RunContext) []domain.Candidate {
	var out []domain.Candidate
	for _, c := range candidates {
		u := urlnorm.Normalize(c.URL)
		if rc.MarkSeen(u) {
			continue
		}
		c.URL = u
		out = append(out, c)
		if len(out) >= o.cfg.PerSourceTopK {
			break
		}
	}
	return out
}

// process takes one canonicalized candidate through every gate. A quota
// slot is consumed only when the store insert succeeds.
func (o *Orchestrator) process(ctx context.Context, cand domain.Candidate, rc *RunContext, collector *statsCollector, logger *slog.Logger, halt context.CancelFunc) {
	u := cand.URL

	parsed, err := url.Parse(u)
	if err != nil {
		collector.reject(domain.RejectNotArticleURL)
		return
	}
	dom := urlnorm.RegistrableDomain(parsed.Hostname())

	runFull, domainFull := rc.AtCapacity(dom)
	if runFull {
		collector.reject(domain.RejectRunQuota)
		return
	}
	if domainFull {
		logger.Debug("domain cap reached", "domain", dom, "url", u)
		collector.reject(domain.RejectDomainQuota)
		return
	}

	if !gate.LikelyArticleURL(u) {
		collector.reject(domain.RejectNotArticleURL)
		return
	}

	collector.attempt()

	fetchCtx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()
	res, err := o.fetcher.Fetch(fetchCtx, u)
	if err != nil {
		// Transient: nothing was stored, so the URL stays eligible for
		// the next run.
		logger.Debug("fetch failed", "url", u, "error", err)
		collector.reject(domain.RejectFetchFailed)
		return
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		collector.reject(domain.RejectExtractFailed)
		return
	}

	if !gate.ArticleByMetadata(doc, u) {
		collector.reject(domain.RejectNotArticleMeta)
		return
	}

	published := extract.DetectPublished(doc)
	if published == nil {
		published = cand.PublishedAt
	}
	if !o.freshness.Fresh(published, o.now()) {
		if published == nil {
			collector.reject(domain.RejectUndated)
		} else {
			collector.reject(domain.RejectStale)
		}
		return
	}

	ex, err := o.extractor.Extract(res.Body, u)
	if err != nil {
		collector.reject(domain.RejectExtractFailed)
		return
	}

	if len(ex.Title) < gate.MinTitleLength {
		collector.reject(domain.RejectShortTitle)
		return
	}
	if !gate.SubstantialExtraction(ex.Title, ex.Body, o.cfg.MinBodyWords) {
		collector.reject(domain.RejectTooShort)
		return
	}

	lang := o.lang.Detect(ex.Body)
	if !language.Accepted(lang, o.cfg.Languages) {
		collector.reject(domain.RejectLanguage)
		return
	}

	ok, reason := rc.Reserve(dom)
	if !ok {
		collector.reject(reason)
		if reason == domain.RejectRunQuota {
			halt()
		}
		return
	}

	sourceName := ex.SiteName
	if sourceName == "" {
		sourceName = parsed.Hostname()
	}

	item := &domain.ContentItem{
		CanonicalURL: u,
		SourceDomain: dom,
		SourceName:   sourceName,
		Title:        ex.Title,
		RawText:      ex.Body,
		Summary:      ex.Summary,
		PublishedAt:  published,
		FetchedAt:    o.now().UTC(),
		Language:     lang,
		Status:       domain.StatusFetched,
	}

	id, inserted, err := o.store.Insert(ctx, item)
	if err != nil {
		rc.Release(dom)
		logger.Error("store insert failed", "url", u, "error", err)
		collector.fail()
		return
	}
	if !inserted {
		// Duplicate canonical URL: expected, silently counted.
		rc.Release(dom)
		collector.reject(domain.RejectDuplicate)
		return
	}

	rc.Commit()
	logger.Info("inserted", "id", id, "url", u, "domain", dom)
	if rc.Exhausted() {
		halt()
	}
}

type statsCollector struct {
	mu    sync.Mutex
	stats *domain.IngestStats
}

func (c *statsCollector) reject(r domain.RejectReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Rejected[r]++
}

func (c *statsCollector) attempt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Attempted++
}

func (c *statsCollector) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.Errors++
}
