// Package publisher pushes scored items to downstream consumers over
// RabbitMQ. Newsletter assembly and other readers subscribe to the queue;
// the pipeline never blocks on them.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"curator/internal/domain"
)

type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// ScoredMessage is the wire format for one scored item. The raw text stays
// in the store; consumers that need it fetch by item ID.
type ScoredMessage struct {
	ItemID         int64                             `json:"item_id"`
	CanonicalURL   string                            `json:"canonical_url"`
	SourceDomain   string                            `json:"source_domain"`
	SourceName     string                            `json:"source_name"`
	Title          string                            `json:"title"`
	Summary        string                            `json:"summary"`
	PublishedAt    *time.Time                        `json:"published_at,omitempty"`
	Language       string                            `json:"language"`
	CompositeScore float64                           `json:"composite_score"`
	Confidence     float64                           `json:"confidence"`
	PrimaryTheme   string                            `json:"primary_theme"`
	ThemeScores    map[string]float64                `json:"theme_scores"`
	Narrative      map[string]domain.NarrativeSignal `json:"narrative_signals"`
	ScoredAt       time.Time                         `json:"scored_at"`
	Timestamp      time.Time                         `json:"timestamp"`
}

func (r *RabbitMQ) Publish(ctx context.Context, item *domain.ContentItem, rec *domain.ScoreRecord) error {
	msg := ScoredMessage{
		ItemID:         item.ID,
		CanonicalURL:   item.CanonicalURL,
		SourceDomain:   item.SourceDomain,
		SourceName:     item.SourceName,
		Title:          item.Title,
		Summary:        item.Summary,
		PublishedAt:    item.PublishedAt,
		Language:       item.Language,
		CompositeScore: rec.CompositeScore,
		Confidence:     rec.Confidence,
		PrimaryTheme:   rec.PrimaryTheme,
		ThemeScores:    rec.ThemeScores,
		Narrative:      rec.NarrativeSignals,
		ScoredAt:       rec.ScoredAt,
		Timestamp:      time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.Debug("published scored item",
		"item_id", item.ID,
		"composite_score", rec.CompositeScore,
		"primary_theme", rec.PrimaryTheme,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
