package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

var _ Notifier = (*Redis)(nil)

// Redis implements Notifier over Redis pub/sub so that signals reach
// sessions held by other processes sharing the same store.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a Redis notifier. Channels are named "<prefix>:<userID>".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) channel(userID uint) string {
	return fmt.Sprintf("%s:%d", r.prefix, userID)
}

func (r *Redis) Notify(ctx context.Context, userID uint) error {
	if err := r.client.Publish(ctx, r.channel(userID), "1").Err(); err != nil {
		return fmt.Errorf("publish change for user %d: %w", userID, err)
	}
	return nil
}

// Listen subscribes to the user's channel. If the subscription cannot be
// confirmed the returned channel never fires; polling still drives the session.
func (r *Redis) Listen(ctx context.Context, userID uint) (<-chan struct{}, func()) {
	out := make(chan struct{}, 1)
	ps := r.client.Subscribe(ctx, r.channel(userID))

	// 購読確立を待つ（確立前のPublishを取りこぼさないため）
	if _, err := ps.Receive(ctx); err != nil {
		slog.Warn("change listener subscribe failed", "user_id", userID, "error", err)
		_ = ps.Close()
		return out, func() {}
	}

	done := make(chan struct{})
	msgs := ps.Channel()
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				signal(out)
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			_ = ps.Close()
		})
	}
}
