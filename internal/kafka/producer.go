package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yourorg/watchlist-service/internal/config"
)

// Event types published on the watchlist topic.
const (
	EventCreated  = "watchlist.created"
	EventUpdated  = "watchlist.updated"
	EventMerged   = "watchlist.merged"
	EventDeleted  = "watchlist.deleted"
	EventArchived = "watchlist.archived"
)

// Event is the change notification emitted after a watchlist operation
// has been persisted. It is a one-way signal for downstream consumers,
// not a synchronization mechanism.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Watchlist string    `json:"watchlist"`
	Version   string    `json:"version,omitempty"`
	Date      string    `json:"date,omitempty"`
	Tickers   int       `json:"tickers,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer publishes watchlist change events to a single Kafka topic.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a producer for the configured brokers and topic.
func NewProducer(cfg *config.KafkaConfig, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Transport: &kafka.Transport{
			ClientID: cfg.ClientID,
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// Publish sends one event, keyed by watchlist filename so events for the
// same list stay ordered. Transient broker errors are retried with
// exponential backoff until the context is done or the backoff gives up.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	event.ID = uuid.New().String()
	event.Timestamp = time.Now()

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event",
			zap.String("type", event.Type),
			zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Watchlist),
		Value: value,
		Time:  event.Timestamp,
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	policy := backoff.WithContext(bo, ctx)

	err = backoff.Retry(func() error {
		return p.writer.WriteMessages(ctx, msg)
	}, policy)

	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("type", event.Type),
			zap.String("watchlist", event.Watchlist),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Event published",
		zap.String("type", event.Type),
		zap.String("watchlist", event.Watchlist))

	return nil
}

// Close closes the underlying Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
