package chat

import (
	"context"
	"encoding/json"
	"net/http"

	"log/slog"
	"nhooyr.io/websocket"

	"github.com/yingjunnan/ChatBox/internal/store"
	"github.com/yingjunnan/ChatBox/pkg/metrics"
)

// MessageStore persists chat traffic before it is broadcast.
type MessageStore interface {
	SaveMessage(ctx context.Context, roomID, username, content, messageType string, userID *int64, isGuest bool) (store.Message, error)
}

// Gateway runs the per-connection session loop: resolve identity, register,
// relay inbound messages to persistence and fanout, deregister on disconnect.
type Gateway struct {
	log    *slog.Logger
	reg    *Registry
	msgs   MessageStore
	users  UserDirectory
	tokens TokenVerifier
	bus    *Bus // nil when no redis is configured
}

// NewGateway wires the chat core. One gateway serves all rooms; it shares
// the registry with the HTTP layer's presence queries.
func NewGateway(log *slog.Logger, reg *Registry, msgs MessageStore, users UserDirectory, tokens TokenVerifier, bus *Bus) *Gateway {
	return &Gateway{log: log, reg: reg, msgs: msgs, users: users, tokens: tokens, bus: bus}
}

// Registry exposes the shared membership registry.
func (g *Gateway) Registry() *Registry { return g.reg }

// Run forwards bus traffic from other instances into local rooms. It blocks
// until ctx is cancelled; with no bus configured it only waits.
func (g *Gateway) Run(ctx context.Context) {
	if g.bus != nil {
		go g.bus.Subscribe(ctx, func(roomID string, payload []byte) {
			g.reg.Broadcast(roomID, payload)
		})
	}
	<-ctx.Done()
}

// ServeWS handles a /ws/{room_id} connection for its entire lifetime.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	roomID := r.PathValue("room_id")
	if roomID == "" {
		http.Error(w, "room_id required", http.StatusBadRequest)
		return
	}

	ws, err := Accept(w, r)
	if err != nil {
		g.log.Error("ws.accept", "err", err)
		return
	}

	// No token and no username: refuse before any registration or broadcast.
	id, ok := g.resolveIdentity(ctx, r.URL.Query())
	if !ok {
		_ = ws.Close(websocket.StatusPolicyViolation, "identity required")
		return
	}

	c := NewConn(ws, roomID, id)
	go c.WriteLoop(ctx)

	g.reg.Register(c, roomID)
	metrics.ConnectionsActive.Inc()
	g.log.Info("chat.join", "room", roomID, "user", c.DisplayName(), "guest", c.IsGuest())
	// The joiner is already registered, so it receives its own announcement.
	g.announce(roomID, actionJoin, c.DisplayName())

	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		var msg InboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			g.log.Warn("chat.bad_payload", "room", roomID, "err", err)
			break
		}

		// Persist before broadcast. The username comes from the payload, not
		// the resolved identity. A store failure tears down this connection
		// only; everyone else keeps chatting.
		if _, err := g.msgs.SaveMessage(ctx, roomID, msg.Username, msg.Content, msg.Type, c.UserID(), c.IsGuest()); err != nil {
			g.log.Error("chat.persist", "room", roomID, "err", err)
			break
		}
		metrics.MessagesTotal.Inc()

		g.reg.Broadcast(roomID, payload)
		if g.bus != nil {
			_ = g.bus.Publish(ctx, roomID, payload)
		}
	}

	g.reg.Deregister(c, roomID)
	metrics.ConnectionsActive.Dec()
	g.log.Info("chat.leave", "room", roomID, "user", c.DisplayName())
	g.announce(roomID, actionLeave, c.DisplayName())
	_ = c.Close()
}

// announce broadcasts a join/leave system frame with a fresh presence
// snapshot to everyone currently in the room.
func (g *Gateway) announce(roomID, action, username string) {
	frame, err := json.Marshal(SystemMessage{
		Type:        "system",
		Action:      action,
		Username:    username,
		OnlineUsers: g.reg.OnlineUsers(roomID),
	})
	if err != nil {
		return
	}
	g.reg.Broadcast(roomID, frame)
}
