//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"curator/internal/domain"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func scoredFixture() (*domain.ContentItem, *domain.ScoreRecord) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	published := now.Add(-4 * time.Hour)

	item := &domain.ContentItem{
		ID:           42,
		CanonicalURL: "https://example.com/mass-timber-tower",
		SourceDomain: "example.com",
		SourceName:   "Example News",
		Title:        "Mass timber tower tops out downtown",
		Summary:      "A 12-story timber tower reached full height.",
		PublishedAt:  &published,
		FetchedAt:    now,
		Language:     "en",
		Status:       domain.StatusScored,
	}
	rec := &domain.ScoreRecord{
		ItemID: 42,
		ThemeScores: map[string]float64{
			"opportunities": 20,
		},
		NarrativeSignals: map[string]domain.NarrativeSignal{
			"impact_roi": {Matches: 2, Multiplier: 1.5},
		},
		CompositeScore: 45.0,
		Confidence:     0.85,
		PrimaryTheme:   "opportunities",
		ScoredAt:       now,
	}
	return item, rec
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange",
		RoutingKey: "test-routing-key",
		QueueName:  "test-queue",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.NoError(err)
	s.NotNil(pub)

	err = pub.Close()
	s.NoError(err)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_MessageFormat() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-format",
		RoutingKey: "test-routing-key-format",
		QueueName:  "test-queue-format",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	item, rec := scoredFixture()
	err = pub.Publish(s.ctx, item, rec)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	s.Equal("application/json", msg.ContentType)

	var received ScoredMessage
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)

	s.Equal(int64(42), received.ItemID)
	s.Equal("https://example.com/mass-timber-tower", received.CanonicalURL)
	s.Equal("Mass timber tower tops out downtown", received.Title)
	s.Equal("opportunities", received.PrimaryTheme)
	s.Equal(45.0, received.CompositeScore)
	s.Equal(0.85, received.Confidence)
	s.Equal(2, received.Narrative["impact_roi"].Matches)
	s.NotNil(received.PublishedAt)
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) TestPublisher_OmitsRawText() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-raw",
		RoutingKey: "test-routing-key-raw",
		QueueName:  "test-queue-raw",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	item, rec := scoredFixture()
	item.RawText = "full body text that must not go over the wire"
	err = pub.Publish(s.ctx, item, rec)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)
	s.NotContains(string(msg.Body), "must not go over the wire")
}

func (s *RabbitMQIntegrationSuite) TestPublisher_MessagePersistence() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-persist",
		RoutingKey: "test-routing-key-persist",
		QueueName:  "test-queue-persist",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	item, rec := scoredFixture()
	err = pub.Publish(s.ctx, item, rec)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}
