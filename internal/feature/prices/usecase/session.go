package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"stock_stream/internal/feature/prices/domain/entity"
	"stock_stream/internal/shared/ticker"
)

// Pusher delivers one batch to the client. Implementations must honour ctx
// and must not buffer: an error means the batch was not delivered.
type Pusher interface {
	Push(ctx context.Context, b entity.Batch) error
}

// SnapshotResolver returns the user's current tickers, sorted ascending.
type SnapshotResolver interface {
	CurrentTickers(ctx context.Context, userID uint) ([]ticker.Ticker, error)
}

// ChangeListener delivers best-effort "subscriptions changed" signals for a user.
type ChangeListener interface {
	Listen(ctx context.Context, userID uint) (<-chan struct{}, func())
}

// Observer receives session lifecycle events (metrics).
type Observer interface {
	SessionOpened(transport string)
	SessionClosed(transport, reason string)
	TickSent(n int)
	TickSkipped()
	PushFailed()
	ResolveFailed()
}

// SessionState is the lifecycle state of a Session.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateActive
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("SessionState(%d)", int32(s))
	}
}

// Close reasons reported to the Observer and logs.
const (
	ReasonCancelled        = "cancelled"
	ReasonPushFailed       = "push_failed"
	ReasonResolveExhausted = "resolve_exhausted"
	ReasonClosed           = "closed"
)

// SessionConfig controls the tick loop.
type SessionConfig struct {
	TickInterval time.Duration
	// MaxResolveFailures closes the session after this many consecutive
	// store failures. 0 means keep retrying forever.
	MaxResolveFailures int
}

// Session streams price batches for one user over one connection.
// It is owned by the goroutine that calls Run.
type Session struct {
	userID    uint
	connID    string
	transport string
	cfg       SessionConfig

	resolver  SnapshotResolver
	generator QuoteGenerator
	observer  Observer
	now       func() time.Time

	changes    <-chan struct{}
	stopListen func()

	lastID atomic.Int64
	state  atomic.Int32

	done      chan struct{}
	closeOnce sync.Once
}

func (s *Session) UserID() uint        { return s.userID }
func (s *Session) ConnID() string      { return s.connID }
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// LastID returns the id of the last successfully pushed batch.
func (s *Session) LastID() int64 { return s.lastID.Load() }

// Run executes the tick loop until ctx is cancelled, Close is called, a push
// fails, or the store fails MaxResolveFailures ticks in a row. The session is
// Closed when Run returns. Cancellation returns nil.
func (s *Session) Run(ctx context.Context, p Pusher) error {
	if !s.state.CompareAndSwap(int32(StateConnecting), int32(StateActive)) {
		return ErrSessionClosed
	}

	reason := ReasonCancelled
	defer func() { s.closeWith(reason) }()

	failures := 0
	for {
		if s.stopped(ctx) {
			return nil
		}

		tickers, err := s.resolver.CurrentTickers(ctx, s.userID)
		switch {
		case err != nil && s.stopped(ctx):
			return nil
		case err != nil:
			failures++
			s.observer.ResolveFailed()
			s.observer.TickSkipped()
			slog.Warn("tick skipped: subscription snapshot unavailable",
				"user_id", s.userID, "conn_id", s.connID, "consecutive_failures", failures, "error", err)
			if s.cfg.MaxResolveFailures > 0 && failures >= s.cfg.MaxResolveFailures {
				reason = ReasonResolveExhausted
				return fmt.Errorf("%w after %d attempts: %w", ErrResolveExhausted, failures, err)
			}
		default:
			failures = 0
			batch := s.buildBatch(tickers)
			if err := p.Push(ctx, batch); err != nil {
				if s.stopped(ctx) {
					return nil
				}
				s.observer.PushFailed()
				reason = ReasonPushFailed
				return fmt.Errorf("%w: %w", ErrPushFailed, err)
			}
			s.lastID.Store(batch.ID)
			s.observer.TickSent(len(batch.Quotes))
		}

		if !s.wait(ctx) {
			return nil
		}
	}
}

// Close stops the session. Safe to call more than once and from any goroutine.
func (s *Session) Close() {
	s.closeWith(ReasonClosed)
}

func (s *Session) closeWith(reason string) {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		s.stopListen()
		s.observer.SessionClosed(s.transport, reason)
		slog.Info("stream session closed",
			"user_id", s.userID, "conn_id", s.connID, "transport", s.transport,
			"reason", reason, "last_id", s.lastID.Load())
	})
}

// buildBatch generates one quote per ticker in the given order under a fresh id.
func (s *Session) buildBatch(tickers []ticker.Ticker) entity.Batch {
	quotes := make([]entity.PriceQuote, 0, len(tickers))
	for _, t := range tickers {
		stock, ok := ticker.Lookup(t)
		if !ok {
			continue
		}
		quotes = append(quotes, s.generator.Generate(t, stock.BasePrice))
	}
	return entity.Batch{ID: s.nextID(), Quotes: quotes}
}

// nextID is max(last+1, now in ms): strictly increasing and roughly time-based
// so that ids keep growing across reconnects.
func (s *Session) nextID() int64 {
	return max(s.lastID.Load()+1, s.now().UnixMilli())
}

// wait sleeps one interval. It returns early (true) on a change signal and
// false when the session must stop.
func (s *Session) wait(ctx context.Context) bool {
	timer := time.NewTimer(s.cfg.TickInterval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	case <-timer.C:
		return true
	case <-s.changes:
		return true
	}
}

func (s *Session) stopped(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
