// Package events publishes committed order events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/computerstore/storefront-api/internal/domains/orders/domain"
	"github.com/computerstore/storefront-api/internal/domains/orders/ports"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("order event publisher closed")

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config selects the brokers and topic for order events.
type Config struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// Publisher writes one message per event, keyed by order id so that every
// event of an order lands on the same partition.
type Publisher struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
	closed atomic.Bool
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWriter replaces the kafka writer, mainly for tests.
func WithWriter(w MessageWriter) Option {
	return func(p *Publisher) { p.writer = w }
}

func NewPublisher(cfg Config, opts ...Option) (*Publisher, error) {
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	p := &Publisher{topic: cfg.Topic, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.writer == nil {
		if len(cfg.Brokers) == 0 {
			return nil, errors.New("kafka brokers are required")
		}
		batchTimeout := cfg.BatchTimeout
		if batchTimeout <= 0 {
			batchTimeout = 50 * time.Millisecond
		}
		logger := p.logger
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: batchTimeout,
			RequiredAcks: kafka.RequireOne,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
				logger.Error(fmt.Sprintf("kafka writer: "+msg, args...))
			}),
		}
	}
	return p, nil
}

func (p *Publisher) Publish(ctx context.Context, events ...domain.Event) error {
	if p.closed.Load() {
		return ErrPublisherClosed
	}
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		msg, err := toMessage(evt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes pending writes. It is safe to call more than once.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

func toMessage(evt domain.Event) (kafka.Message, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.OrderID, 10)),
		Value: body,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(evt.Type)},
			{Key: "event-id", Value: []byte(evt.ID)},
		},
	}, nil
}

var _ ports.EventPublisher = (*Publisher)(nil)
