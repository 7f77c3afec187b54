package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func received(ch <-chan struct{}, within time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(within):
		return false
	}
}

func TestMemory_NotifyWakesOnlyThatUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	ch1, cancel1 := m.Listen(ctx, 1)
	defer cancel1()
	ch2, cancel2 := m.Listen(ctx, 2)
	defer cancel2()

	require.NoError(t, m.Notify(ctx, 1))

	assert.True(t, received(ch1, time.Second))
	assert.False(t, received(ch2, 50*time.Millisecond))
}

func TestMemory_SignalsCoalesceAndNeverBlock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	ch, cancel := m.Listen(ctx, 5)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for range 100 {
			_ = m.Notify(ctx, 5)
		}
		close(done)
	}()
	require.True(t, received(done, time.Second), "Notify blocked")

	assert.True(t, received(ch, time.Second))
	assert.False(t, received(ch, 20*time.Millisecond), "pending signals should coalesce into one")
}

func TestMemory_CancelUnregisters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	_, cancelA := m.Listen(ctx, 9)
	chB, cancelB := m.Listen(ctx, 9)
	assert.Equal(t, 2, m.listenerCount(9))

	cancelA()
	cancelA()
	assert.Equal(t, 1, m.listenerCount(9))

	require.NoError(t, m.Notify(ctx, 9))
	assert.True(t, received(chB, time.Second))

	cancelB()
	assert.Equal(t, 0, m.listenerCount(9))
	assert.NoError(t, m.Notify(ctx, 9))
}

func TestNoop(t *testing.T) {
	t.Parallel()
	ch, cancel := Noop{}.Listen(context.Background(), 1)
	defer cancel()

	assert.NoError(t, Noop{}.Notify(context.Background(), 1))
	assert.Nil(t, ch)
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client
}

func TestRedis_NotifyReachesListener(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := setupTestRedis(t)
	n := NewRedis(client, "subscriptions:changed")

	ch, cancel := n.Listen(ctx, 42)
	defer cancel()
	other, cancelOther := n.Listen(ctx, 43)
	defer cancelOther()

	require.NoError(t, n.Notify(ctx, 42))

	assert.True(t, received(ch, 2*time.Second))
	assert.False(t, received(other, 100*time.Millisecond))
}

func TestRedis_CancelStopsDelivery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := setupTestRedis(t)
	n := NewRedis(client, "subscriptions:changed")

	ch, cancel := n.Listen(ctx, 1)
	cancel()
	cancel()

	require.NoError(t, n.Notify(ctx, 1))
	assert.False(t, received(ch, 100*time.Millisecond))
}

func TestRedis_NotifyError(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	mock.ExpectPublish("subscriptions:changed:7", "1").SetErr(errors.New("connection refused"))

	err := NewRedis(db, "subscriptions:changed").Notify(context.Background(), 7)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
