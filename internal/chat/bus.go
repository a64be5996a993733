package chat

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"log/slog"

	"github.com/yingjunnan/ChatBox/internal/app"
)

// BusMessage is one chat frame relayed between instances. Origin lets a
// subscriber skip frames it published itself, so local members never see a
// message twice.
type BusMessage struct {
	Origin  string `json:"origin"`
	RoomID  string `json:"roomId"`
	Payload []byte `json:"payload"`
}

// Bus fans chat frames out across instances over redis pub/sub.
type Bus struct {
	rdb    *redis.Client
	log    *slog.Logger
	origin string
}

// NewBus connects to redis and verifies connectivity
func NewBus(ctx context.Context, cfg app.Config, log *slog.Logger) (*Bus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Bus{rdb: rdb, log: log, origin: uuid.NewString()}, nil
}

// Publish sends a frame to the redis channel for a room
func (b *Bus) Publish(ctx context.Context, roomID string, payload []byte) error {
	raw, _ := json.Marshal(BusMessage{Origin: b.origin, RoomID: roomID, Payload: payload})
	return b.rdb.Publish(ctx, channel(roomID), raw).Err()
}

// Subscribe listens to all room channels and invokes fn for every frame
// published by another instance.
func (b *Bus) Subscribe(ctx context.Context, fn func(roomID string, payload []byte)) {
	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg := <-ch:
			var bm BusMessage
			_ = json.Unmarshal([]byte(msg.Payload), &bm)
			if bm.RoomID == "" || bm.Origin == b.origin {
				continue
			}
			fn(bm.RoomID, bm.Payload)
		}
	}
}

// Close shuts down the redis connection
func (b *Bus) Close() { _ = b.rdb.Close() }

// channel namespacing for room pub/sub
func channel(roomID string) string { return "room:" + roomID }
