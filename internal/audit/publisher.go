// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

//go:build nats

package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/vigil/internal/logging"
)

// PublisherConfig configures the Watermill/NATS publisher.
type PublisherConfig struct {
	URL             string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// DefaultPublisherConfig returns production defaults, matching the
// teacher's eventprocessor.DefaultPublisherConfig.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{URL: url, MaxReconnects: -1, ReconnectWait: 2 * time.Second, ReconnectBuffer: 8 * 1024 * 1024}
}

// Publisher wraps a Watermill NATS JetStream publisher with circuit
// breaker protection, the same shape the teacher's eventprocessor.Publisher
// gives its own MediaEvent stream.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]
	log       *logging.EventLogger
	mu        sync.RWMutex
	closed    bool
}

// DefaultBreakerConfig trips after five consecutive failures and goes
// half-open after 30s, admitting one trial request. Unlike
// internal/dmx.DefaultBreakerConfig it never clears its counts while
// closed (Interval 0).
func DefaultBreakerConfig(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// NewPublisher connects to the JetStream instance at cfg.URL.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	logger := watermill.NewStdLogger(false, false)

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker[interface{}](DefaultBreakerConfig("audit-publisher"))
	evLog := logging.NewEventLogger()
	evLog.LogRouterStarted()
	return &Publisher{publisher: pub, breaker: breaker, log: evLog}, nil
}

// Publish records p, publishing it to ProcessedAction.Topic() with
// circuit-breaker protection: a tripped breaker returns an error without
// retrying, matching the "external process failure" error path of
// spec.md §7.
func (p *Publisher) Publish(_ context.Context, record ProcessedAction) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("audit publisher is closed")
	}
	p.mu.RUnlock()

	data, err := Serialize(record)
	if err != nil {
		return fmt.Errorf("serialize audit record: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(record.Topic(), msg)
	})
	if err != nil {
		p.log.LogEventFailed(context.Background(), fmt.Sprintf("%d", record.EventID), err)
		return err
	}
	p.log.LogEventPublished(context.Background(), fmt.Sprintf("%d", record.EventID), record.Topic())
	return nil
}

// Close releases the underlying Watermill publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.LogRouterStopped()
	return p.publisher.Close()
}
