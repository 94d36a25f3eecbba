// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

//go:build nats

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// EmbeddedServerConfig configures the self-contained JetStream instance.
type EmbeddedServerConfig struct {
	Host     string
	Port     int
	StoreDir string
}

// DefaultEmbeddedServerConfig returns sane defaults for a single-instance
// deployment: listen on an OS-assigned port, persist under StoreDir.
func DefaultEmbeddedServerConfig(storeDir string) EmbeddedServerConfig {
	return EmbeddedServerConfig{Host: "127.0.0.1", Port: -1, StoreDir: storeDir}
}

// EmbeddedServer wraps an in-process NATS JetStream server, so the audit
// log needs no external broker to operate.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer starts an embedded JetStream server and blocks until
// it is ready to accept connections or 30s elapses.
func NewEmbeddedServer(cfg EmbeddedServerConfig) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName: "vigil-audit",
		Host:       cfg.Host,
		Port:       cfg.Port,
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		DontListen: false,
		NoLog:      true,
		MaxPayload: 1 * 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create embedded nats server: %w", err)
	}
	ns.ConfigureLogger()
	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded nats server not ready within timeout")
	}

	return &EmbeddedServer{server: ns, clientURL: ns.ClientURL()}, nil
}

// ClientURL returns the connection URL publishers/subscribers should use.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Shutdown stops the embedded server, waiting for in-flight work to
// settle or ctx to expire.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	s.server.Shutdown()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.server.WaitForShutdown()
		return nil
	}
}
