package store

import "context"

// SaveMessage appends one chat message to a room's history.
// The username is recorded exactly as the sender supplied it.
func (p *Postgres) SaveMessage(ctx context.Context, roomID, username, content, messageType string, userID *int64, isGuest bool) (Message, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO messages (room_id, username, content, message_type, user_id, is_guest)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, roomID, username, content, messageType, userID, isGuest)

	m := Message{
		RoomID:      roomID,
		Username:    username,
		Content:     content,
		MessageType: messageType,
		UserID:      userID,
		IsGuest:     isGuest,
	}
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return Message{}, err
	}
	p.log.Debug("message.saved", "room", roomID, "user", username, "type", messageType)
	return m, nil
}

// RoomMessages returns up to limit messages for a room, oldest first
func (p *Postgres) RoomMessages(ctx context.Context, roomID string, limit int) ([]Message, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, room_id, username, content, message_type, user_id, is_guest, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Username, &m.Content, &m.MessageType, &m.UserID, &m.IsGuest, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
