package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"curator/internal/config"
	"curator/internal/domain"
	"curator/internal/extract"
	"curator/internal/fetch"
	"curator/internal/ingest/mocks"
)

var testNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

type IngestTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	source    *mocks.MockSource
	fetcher   *mocks.MockFetcher
	extractor *mocks.MockExtractor
	lang      *mocks.MockLanguageDetector
	store     *mocks.MockContentStore
	runLog    *mocks.MockRunLogStore

	cfg    config.IngestConfig
	logger *slog.Logger
}

func (s *IngestTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.source = mocks.NewMockSource(s.ctrl)
	s.fetcher = mocks.NewMockFetcher(s.ctrl)
	s.extractor = mocks.NewMockExtractor(s.ctrl)
	s.lang = mocks.NewMockLanguageDetector(s.ctrl)
	s.store = mocks.NewMockContentStore(s.ctrl)
	s.runLog = mocks.NewMockRunLogStore(s.ctrl)

	s.cfg = config.IngestConfig{
		RunCap:          100,
		PerDomainCap:    8,
		PerSourceTopK:   8,
		FreshnessWindow: 72 * time.Hour,
		MinBodyWords:    5,
		Workers:         1,
		FetchTimeout:    5 * time.Second,
		RunDeadline:     time.Minute,
		Languages:       []string{"en"},
	}

	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.source.EXPECT().ID().Return("feed:test").AnyTimes()
	s.source.EXPECT().Name().Return("Test Feed").AnyTimes()
	s.runLog.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (s *IngestTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestIngestTestSuite(t *testing.T) {
	suite.Run(t, new(IngestTestSuite))
}

func (s *IngestTestSuite) newOrchestrator(sources ...Source) *Orchestrator {
	o := NewOrchestrator(sources, s.fetcher, s.extractor, s.lang, s.store, s.runLog, s.logger, s.cfg)
	o.now = func() time.Time { return testNow }
	return o
}

// articleHTML builds a page that clears the metadata gate with the given
// publish time.
func articleHTML(published time.Time) []byte {
	return []byte(fmt.Sprintf(`<html><head>
		<meta property="og:type" content="article">
		<meta property="article:published_time" content="%s">
		<title>Mass timber tower tops out</title>
		</head><body><p>body</p></body></html>`,
		published.Format(time.RFC3339)))
}

func goodExtraction() *extract.Extraction {
	return &extract.Extraction{
		Title:    "Mass timber tower tops out downtown",
		Body:     "The tower reached full height this week after rapid assembly.",
		Summary:  "Timber tower tops out.",
		SiteName: "Example News",
	}
}

func (s *IngestTestSuite) TestRun_InsertsFreshArticle() {
	url := "https://example.com/2026/08/mass-timber-tower"
	published := testNow.Add(-6 * time.Hour)

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), url).Return(goodExtraction(), nil)
	s.lang.EXPECT().Detect(gomock.Any()).Return("en")
	s.store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, item *domain.ContentItem) (int64, bool, error) {
			s.Equal(url, item.CanonicalURL)
			s.Equal("example.com", item.SourceDomain)
			s.Equal("Example News", item.SourceName)
			s.Equal(domain.StatusFetched, item.Status)
			s.Equal("en", item.Language)
			s.Require().NotNil(item.PublishedAt)
			s.True(item.PublishedAt.Equal(published))
			return 1, true, nil
		})

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Inserted)
	s.Equal(1, stats.Attempted)
	s.Equal(0, stats.Errors)
	s.Equal(1, stats.PerDomain["example.com"])
}

func (s *IngestTestSuite) TestRun_DuplicateConsumesNoQuota() {
	url := "https://example.com/2026/08/repeat-story"
	published := testNow.Add(-6 * time.Hour)

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), url).Return(goodExtraction(), nil)
	s.lang.EXPECT().Detect(gomock.Any()).Return("en")
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(0), false, nil)

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(0, stats.Inserted)
	s.Equal(1, stats.Rejected[domain.RejectDuplicate])
	s.Equal(0, stats.PerDomain["example.com"])
}

func (s *IngestTestSuite) TestRun_SameURLFetchedOncePerRun() {
	url := "https://example.com/2026/08/one-story"
	published := testNow.Add(-6 * time.Hour)

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url}, {URL: url + "?utm_source=tw"}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil).Times(1)
	s.extractor.EXPECT().Extract(gomock.Any(), url).Return(goodExtraction(), nil).Times(1)
	s.lang.EXPECT().Detect(gomock.Any()).Return("en").Times(1)
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil).Times(1)

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Inserted)
}

func (s *IngestTestSuite) TestRun_DomainCapEnforced() {
	s.cfg.PerDomainCap = 1
	published := testNow.Add(-6 * time.Hour)

	urls := []domain.Candidate{
		{URL: "https://example.com/2026/08/first-story"},
		{URL: "https://example.com/2026/08/second-story"},
	}
	s.source.EXPECT().Candidates(gomock.Any()).Return(urls, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), urls[0].URL).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), urls[0].URL).Return(goodExtraction(), nil)
	s.lang.EXPECT().Detect(gomock.Any()).Return("en")
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil)

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Inserted)
	s.Equal(1, stats.Rejected[domain.RejectDomainQuota])
}

func (s *IngestTestSuite) TestRun_RunCapHaltsRemainingSources() {
	s.cfg.RunCap = 1
	published := testNow.Add(-6 * time.Hour)
	url := "https://example.com/2026/08/only-story"

	second := mocks.NewMockSource(s.ctrl)

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), url).Return(goodExtraction(), nil)
	s.lang.EXPECT().Detect(gomock.Any()).Return("en")
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil)
	// The second source must never be consulted.

	stats, err := s.newOrchestrator(s.source, second).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Inserted)
}

func (s *IngestTestSuite) TestRun_StaleAndUndatedRejected() {
	stale := "https://example.com/2026/05/old-story"
	undated := "https://example.com/2026/08/mystery-story"

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: stale}, {URL: undated}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), stale).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(testNow.Add(-30 * 24 * time.Hour))}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), undated).Return(&fetch.Result{StatusCode: 200, Body: []byte(`<html><head><meta property="og:type" content="article"><title>t</title></head><body></body></html>`)}, nil)

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(0, stats.Inserted)
	s.Equal(1, stats.Rejected[domain.RejectStale])
	s.Equal(1, stats.Rejected[domain.RejectUndated])
}

func (s *IngestTestSuite) TestRun_FeedTimestampBacksUpMissingMeta() {
	url := "https://example.com/2026/08/feed-dated-story"
	feedTime := testNow.Add(-10 * time.Hour)

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url, PublishedAt: &feedTime}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(&fetch.Result{StatusCode: 200, Body: []byte(`<html><head><meta property="og:type" content="article"><title>t</title></head><body></body></html>`)}, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), url).Return(goodExtraction(), nil)
	s.lang.EXPECT().Detect(gomock.Any()).Return("en")
	s.store.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, item *domain.ContentItem) (int64, bool, error) {
			s.Require().NotNil(item.PublishedAt)
			s.True(item.PublishedAt.Equal(feedTime))
			return 1, true, nil
		})

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Inserted)
}

func (s *IngestTestSuite) TestRun_NonArticleURLSkippedWithoutFetch() {
	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{
		{URL: "https://example.com/category/news"},
		{URL: "https://twitter.com/someone/status/123456789"},
	}, nil)

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(0, stats.Attempted)
	s.Equal(2, stats.Rejected[domain.RejectNotArticleURL])
}

func (s *IngestTestSuite) TestRun_WrongLanguageRejected() {
	url := "https://example.com/2026/08/auf-deutsch"
	published := testNow.Add(-6 * time.Hour)

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), url).Return(goodExtraction(), nil)
	s.lang.EXPECT().Detect(gomock.Any()).Return("de")

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(0, stats.Inserted)
	s.Equal(1, stats.Rejected[domain.RejectLanguage])
}

func (s *IngestTestSuite) TestRun_ShortBodyRejected() {
	url := "https://example.com/2026/08/thin-story"
	published := testNow.Add(-6 * time.Hour)

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil)
	s.extractor.EXPECT().Extract(gomock.Any(), url).Return(&extract.Extraction{
		Title: "A headline long enough",
		Body:  "too short",
	}, nil)

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Rejected[domain.RejectTooShort])
}

func (s *IngestTestSuite) TestRun_FetchFailureIsRetryableReject() {
	url := "https://example.com/2026/08/unreachable"

	s.source.EXPECT().Candidates(gomock.Any()).Return([]domain.Candidate{{URL: url}}, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), url).Return(nil, errors.New("connection refused"))

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Rejected[domain.RejectFetchFailed])
	s.Equal(0, stats.Errors)
}

func (s *IngestTestSuite) TestRun_SourceFailureCountsError() {
	s.source.EXPECT().Candidates(gomock.Any()).Return(nil, errors.New("feed unreachable"))

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(1, stats.Errors)
	s.Equal(0, stats.Inserted)
}

func (s *IngestTestSuite) TestRun_PerSourceTopK() {
	s.cfg.PerSourceTopK = 2
	published := testNow.Add(-6 * time.Hour)

	var cands []domain.Candidate
	for i := 0; i < 6; i++ {
		cands = append(cands, domain.Candidate{URL: fmt.Sprintf("https://example.com/2026/08/story-%d", i)})
	}
	s.source.EXPECT().Candidates(gomock.Any()).Return(cands, nil)
	s.fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).Return(&fetch.Result{StatusCode: 200, Body: articleHTML(published)}, nil).Times(2)
	s.extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(goodExtraction(), nil).Times(2)
	s.lang.EXPECT().Detect(gomock.Any()).Return("en").Times(2)
	s.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(int64(1), true, nil).Times(2)

	stats, err := s.newOrchestrator(s.source).Run(context.Background())
	s.NoError(err)
	s.Equal(2, stats.Attempted)
}
