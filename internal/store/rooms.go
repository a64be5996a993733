package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// CreateRoom inserts a room with a caller-supplied id and optional password
func (p *Postgres) CreateRoom(ctx context.Context, id, name, password string) (Room, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, name, password)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING id, name, COALESCE(password, ''), created_at
	`, id, name, password)

	var rm Room
	if err := row.Scan(&rm.ID, &rm.Name, &rm.Password, &rm.CreatedAt); err != nil {
		return Room{}, err
	}
	return rm, nil
}

// ListRooms returns all rooms, newest first
func (p *Postgres) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, name, COALESCE(password, ''), created_at
		FROM rooms
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Password, &rm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// GetRoom fetches a room by id
func (p *Postgres) GetRoom(ctx context.Context, id string) (Room, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(password, ''), created_at
		FROM rooms
		WHERE id = $1
	`, id)

	var rm Room
	if err := row.Scan(&rm.ID, &rm.Name, &rm.Password, &rm.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrNotFound
		}
		return Room{}, err
	}
	return rm, nil
}
