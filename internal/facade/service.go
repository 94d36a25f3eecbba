// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package facade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/systeminterface"
)

// Service wraps the HTTP/WebSocket server and the Hub's relay loop as a
// single supervised unit, translating http.Server's blocking
// ListenAndServe and Hub.RunWithContext's blocking loop into suture's
// context-aware Serve pattern. Register one Service per façade instance
// on the supervision tree's API layer.
type Service struct {
	log             zerolog.Logger
	httpServer      *http.Server
	hub             *Hub
	updates         <-chan systeminterface.Update
	shutdownTimeout time.Duration
}

// NewService builds a Service listening on addr, serving srv's routes,
// and relaying updates to hub's connected clients.
func NewService(log zerolog.Logger, addr string, srv *Server, hub *Hub, updates <-chan systeminterface.Update, shutdownTimeout time.Duration) *Service {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Service{
		log:             log.With().Str("component", "facade_service").Logger(),
		httpServer:      &http.Server{Addr: addr, Handler: srv.Handler()},
		hub:             hub,
		updates:         updates,
		shutdownTimeout: shutdownTimeout,
	}
}

// Serve implements suture.Service: it starts the HTTP listener and the
// Hub's relay loop, returning once ctx is canceled or either fails.
func (s *Service) Serve(ctx context.Context) error {
	httpErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
			return
		}
		httpErr <- nil
	}()

	hubErr := make(chan error, 1)
	go func() { hubErr <- s.hub.RunWithContext(ctx, s.updates) }()

	select {
	case err := <-httpErr:
		if err != nil {
			return fmt.Errorf("facade http server failed: %w", err)
		}
		<-hubErr
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("facade http server shutdown failed")
		}
		<-httpErr
		<-hubErr
		return ctx.Err()
	}
}

// String identifies this service in supervisor logs.
func (s *Service) String() string {
	return "facade"
}
