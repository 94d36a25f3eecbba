// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

//go:build !nats

package audit

import (
	"context"
	"fmt"
	"time"
)

// PublisherConfig configures the (absent) Watermill/NATS publisher.
type PublisherConfig struct {
	URL             string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// DefaultPublisherConfig returns the stub defaults; URL is retained for
// API parity with the nats-tagged build.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{URL: url, MaxReconnects: -1, ReconnectWait: 2 * time.Second, ReconnectBuffer: 8 * 1024 * 1024}
}

// Publisher is a no-op stand-in when built without the "nats" tag.
type Publisher struct{}

// NewPublisher always fails: build with -tags=nats to enable the audit
// log, matching eventprocessor.Publisher's own stub in the teacher.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	return nil, fmt.Errorf("audit publisher not available: build with -tags=nats")
}

// Publish is a stub that returns an error.
func (p *Publisher) Publish(_ context.Context, _ ProcessedAction) error {
	return fmt.Errorf("audit publisher not available: build with -tags=nats")
}

// Close is a no-op stub.
func (p *Publisher) Close() error {
	return nil
}
