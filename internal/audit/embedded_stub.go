// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

//go:build !nats

package audit

import (
	"context"
	"fmt"
)

// EmbeddedServerConfig configures the (absent) embedded JetStream
// instance.
type EmbeddedServerConfig struct {
	Host     string
	Port     int
	StoreDir string
}

// DefaultEmbeddedServerConfig returns the stub defaults.
func DefaultEmbeddedServerConfig(storeDir string) EmbeddedServerConfig {
	return EmbeddedServerConfig{Host: "127.0.0.1", Port: -1, StoreDir: storeDir}
}

// EmbeddedServer is a no-op stand-in when built without the "nats" tag.
type EmbeddedServer struct{}

// NewEmbeddedServer always fails: build with -tags=nats to enable the
// embedded audit broker.
func NewEmbeddedServer(cfg EmbeddedServerConfig) (*EmbeddedServer, error) {
	return nil, fmt.Errorf("embedded nats server not available: build with -tags=nats")
}

// ClientURL returns the empty string for the stub.
func (s *EmbeddedServer) ClientURL() string { return "" }

// Shutdown is a no-op stub.
func (s *EmbeddedServer) Shutdown(_ context.Context) error { return nil }
