// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package facade

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/model"
	"github.com/tomtom215/vigil/internal/systeminterface"
)

// requestTimeout bounds how long a single HTTP route waits for the
// System Interface's one-shot reply.
const requestTimeout = 2 * time.Second

// Submitter is the subset of *systeminterface.SystemInterface the façade
// drives; a narrow interface keeps this package's only core dependency
// explicit and testable with a fake.
type Submitter interface {
	Submit(ctx context.Context, req model.UserRequest) (systeminterface.Reply, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the thin HTTP/WebSocket control surface: a chi mux
// translating JSON bodies into SystemInterface.Submit calls, plus a
// websocket upgrade endpoint serving the Hub's outbound update stream.
type Server struct {
	log  zerolog.Logger
	core Submitter
	hub  *Hub
}

// NewServer builds a Server over core and hub. core is typically a
// *systeminterface.SystemInterface; hub is typically registered on the
// supervision tree separately and fed from core.Subscribe().
func NewServer(log zerolog.Logger, core Submitter, hub *Hub) *Server {
	return &Server{log: log.With().Str("component", "facade_server").Logger(), core: core, hub: hub}
}

// Handler returns the configured chi mux.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitAll(120, time.Minute))

	r.Get("/ws", s.handleWebsocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/process-event", s.handleRequest(decodeProcessEvent))
		r.Post("/cue-event", s.handleRequest(decodeCueEvent))
		r.Post("/scene", s.handleRequest(decodeSceneChange))
		r.Post("/status", s.handleRequest(decodeStatusChange))
		r.Post("/all-stop", s.handleRequest(decodeAllStop))
		r.Post("/clear-queue", s.handleRequest(decodeClearQueue))
		r.Post("/event-change", s.handleRequest(decodeEventChange))
		r.Post("/all-event-change", s.handleRequest(decodeAllEventChange))
		r.Post("/broadcast", s.handleRequest(decodeBroadcastEvent))
		r.Post("/edit", s.handleRequest(decodeEdit))
		r.Post("/query", s.handleRequest(decodeQuery))
	})

	return r
}

type decodeFunc func(r *http.Request) (model.UserRequest, error)

// handleRequest decodes the body with decode, submits the resulting
// UserRequest, and writes back the systeminterface.Reply as JSON,
// {"OK": bool, "Query": ...} (Reply has no json tags). Per spec.md
// §7, a refused request is a normal reply, not an HTTP error: only a
// malformed body or a core timeout produces a non-2xx status.
func (s *Server) handleRequest(decode decodeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decode(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx := logging.ContextWithNewRequestID(r.Context())
		logging.Ctx(ctx).Debug().Str("path", r.URL.Path).Msg("facade request received")

		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		reply, err := s.core.Submit(ctx, req)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("path", r.URL.Path).Msg("facade request timed out")
			http.Error(w, "core request timed out", http.StatusGatewayTimeout)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := NewClient(s.log, s.hub, conn)
	s.hub.Register <- client
	client.Start()
}
