package di

import (
	"github.com/redis/go-redis/v9"

	"stock_stream/internal/platform/notify"
)

const notifyChannelPrefix = "subscriptions"

// NewChangeNotifier creates the subscription change Notifier.
// If Redis is available, it returns a Redis pub/sub implementation so that
// every instance sees the change. Otherwise, it falls back to in-process.
func NewChangeNotifier(rdb *redis.Client, enabled bool) notify.Notifier {
	if !enabled {
		return notify.Noop{}
	}
	if rdb != nil {
		return notify.NewRedis(rdb, notifyChannelPrefix)
	}
	return notify.NewMemory()
}
