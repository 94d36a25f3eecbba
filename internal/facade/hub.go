// Vigil - Show-Control Runtime for Immersive Installations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package facade

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/systeminterface"
)

// Message types for the outbound update stream (spec.md §6): window
// snapshots, per-status updates, the notification stream, broadcast
// payloads, and timeline (queue) snapshots, plus the ping/pong keepalive
// pair. There is no config snapshot message.
const (
	MessageTypeNotification = "notification"
	MessageTypeBroadcast    = "broadcast"
	MessageTypeTimeline     = "timeline"
	MessageTypeStatus       = "status"
	MessageTypeWindow       = "window"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Message is the JSON envelope written to every connected operator UI.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of connected operator UIs and fans outbound
// Update values from a systeminterface.SystemInterface out to all of
// them, mirroring the register/unregister/broadcast actor shape the
// teacher codebase uses for its own websocket layer.
type Hub struct {
	log zerolog.Logger

	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:        log.With().Str("component", "facade_hub").Logger(),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext relays the SystemInterface's update bus and client
// lifecycle events until ctx is canceled. It takes the update channel
// as an argument, so it is not itself a suture.Service; Service in
// service.go wraps it for the supervision tree.
// Priority-based selection (lifecycle before broadcast) keeps client
// bookkeeping consistent before a broadcast iterates the client set.
func (h *Hub) RunWithContext(ctx context.Context, updates <-chan systeminterface.Update) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.closeAllClients()
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case u, ok := <-updates:
			if !ok {
				continue
			}
			h.broadcastUpdate(u)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.log.Info().Int("total_clients", len(h.clients)).Msg("operator ui connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.log.Info().Int("total_clients", len(h.clients)).Msg("operator ui disconnected")
}

// broadcastUpdate translates a systeminterface.Update into the wire
// Message shape and fans it out.
func (h *Hub) broadcastUpdate(u systeminterface.Update) {
	var msg Message
	switch u.Kind {
	case systeminterface.UpdateNotification:
		msg = Message{Type: MessageTypeNotification, Data: u.Notification}
	case systeminterface.UpdateBroadcast:
		msg = Message{Type: MessageTypeBroadcast, Data: u.Broadcast}
	case systeminterface.UpdateTimeline:
		msg = Message{Type: MessageTypeTimeline, Data: u.Timeline}
	case systeminterface.UpdateStatus:
		msg = Message{Type: MessageTypeStatus, Data: u.Status}
	case systeminterface.UpdateWindow:
		msg = Message{Type: MessageTypeWindow, Data: u.Window}
	default:
		return
	}
	h.broadcastToClients(msg)
}

// broadcastToClients sends a message to all connected clients in a
// deterministic (client id) order, dropping it for any client whose send
// buffer is full rather than blocking the hub.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.log.Info().Msg("closed all operator ui connections during shutdown")
}

// ClientCount returns the number of connected operator UIs.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
