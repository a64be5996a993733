package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yingjunnan/ChatBox/internal/chat"
	"github.com/yingjunnan/ChatBox/internal/store"
)

type RoomsAPI struct {
	DB       *store.Postgres
	Presence *chat.Registry
}

type createRoomReq struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type roomListItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HasPassword bool      `json:"has_password"`
	OnlineCount int       `json:"online_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type joinRoomReq struct {
	RoomID   string `json:"room_id"`
	Password string `json:"password"`
}

// Create makes a new room with a short random id
func (a *RoomsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()[:8]
	rm, err := a.DB.CreateRoom(r.Context(), id, req.Name, req.Password)
	if err != nil {
		http.Error(w, "create failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"id": rm.ID, "name": rm.Name})
}

// List returns all rooms, newest first, annotated with live presence counts
func (a *RoomsAPI) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.DB.ListRooms(r.Context())
	if err != nil {
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}

	resp := make([]roomListItem, 0, len(rooms))
	for _, rm := range rooms {
		resp = append(resp, roomListItem{
			ID:          rm.ID,
			Name:        rm.Name,
			HasPassword: rm.Password != "",
			OnlineCount: a.Presence.OnlineCount(rm.ID),
			CreatedAt:   rm.CreatedAt,
		})
	}
	writeJSON(w, resp)
}

// Join checks the room's password, if any. Room passwords are a plain
// equality gate, not credentials.
func (a *RoomsAPI) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	rm, err := a.DB.GetRoom(r.Context(), req.RoomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if rm.Password != "" && rm.Password != req.Password {
		http.Error(w, "invalid password", http.StatusForbidden)
		return
	}

	writeJSON(w, map[string]any{
		"success": true,
		"room": map[string]any{
			"id":         rm.ID,
			"name":       rm.Name,
			"created_at": rm.CreatedAt,
		},
	})
}

type messageDTO struct {
	ID          int64     `json:"id"`
	RoomID      string    `json:"room_id"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	UserID      *int64    `json:"user_id"`
	IsGuest     bool      `json:"is_guest"`
	CreatedAt   time.Time `json:"created_at"`
}

// Messages returns a room's history, oldest first
func (a *RoomsAPI) Messages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	msgs, err := a.DB.RoomMessages(r.Context(), id, 200)
	if err != nil {
		http.Error(w, "history failed", http.StatusInternalServerError)
		return
	}

	resp := make([]messageDTO, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageDTO{
			ID:          m.ID,
			RoomID:      m.RoomID,
			Username:    m.Username,
			Content:     m.Content,
			MessageType: m.MessageType,
			UserID:      m.UserID,
			IsGuest:     m.IsGuest,
			CreatedAt:   m.CreatedAt,
		})
	}
	writeJSON(w, resp)
}
