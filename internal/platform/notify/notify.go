// Package notify はユーザー単位の「購読が変わった」シグナルを配信します。
// シグナルは内容を持たず、受信側は次のtickを前倒しするだけです。
package notify

import (
	"context"
	"sync"
)

// Notifier publishes and listens for per-user subscription change signals.
type Notifier interface {
	// Notify never blocks on slow listeners.
	Notify(ctx context.Context, userID uint) error
	// Listen returns a channel that fires at least once after any Notify for
	// userID. Signals coalesce. The cancel func must be called to release it.
	Listen(ctx context.Context, userID uint) (<-chan struct{}, func())
}

var (
	_ Notifier = (*Memory)(nil)
	_ Notifier = Noop{}
)

// Memory is a process-local Notifier.
type Memory struct {
	mu        sync.Mutex
	listeners map[uint]map[chan struct{}]struct{}
}

func NewMemory() *Memory {
	return &Memory{listeners: make(map[uint]map[chan struct{}]struct{})}
}

func (m *Memory) Notify(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.listeners[userID] {
		signal(ch)
	}
	return nil
}

func (m *Memory) Listen(_ context.Context, userID uint) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	set, ok := m.listeners[userID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		m.listeners[userID] = set
	}
	set[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.listeners[userID], ch)
			if len(m.listeners[userID]) == 0 {
				delete(m.listeners, userID)
			}
		})
	}
}

// listenerCount is used by tests.
func (m *Memory) listenerCount(userID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners[userID])
}

// Noop drops every signal. Listen returns a nil channel that never fires.
type Noop struct{}

func (Noop) Notify(context.Context, uint) error { return nil }

func (Noop) Listen(context.Context, uint) (<-chan struct{}, func()) { return nil, func() {} }

// signal は1スロットのチャネルへ非ブロッキングで送信します（既に保留中なら合流）。
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
