package store

import "time"

type Room struct {
	ID        string
	Name      string
	Password  string // plaintext, checked by the join endpoint; empty means open room
	CreatedAt time.Time
}

type Message struct {
	ID          int64
	RoomID      string
	Username    string
	Content     string
	MessageType string
	UserID      *int64 // nil for guest senders
	IsGuest     bool
	CreatedAt   time.Time
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	DisplayName  string
	Email        string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
