// Package chat implements the room membership and broadcast core: the
// registry of live connections per room, best-effort fanout, presence
// derivation, and the per-connection session gateway over websocket.
package chat

// InboundMessage is what clients send on the wire. The gateway persists the
// username exactly as it appears in the payload and relays the raw frame
// verbatim to the room.
type InboundMessage struct {
	Username string `json:"username"`
	Content  string `json:"content"`
	Type     string `json:"type"`
}

// SystemMessage announces joins and leaves together with the room's current
// distinct online display names.
type SystemMessage struct {
	Type        string   `json:"type"` // always "system"
	Action      string   `json:"action"`
	Username    string   `json:"username"`
	OnlineUsers []string `json:"online_users"`
}

const (
	actionJoin  = "join"
	actionLeave = "leave"
)
