package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultTickInterval = time.Second

// StreamUsecase opens streaming sessions for authenticated users.
type StreamUsecase struct {
	resolver  SnapshotResolver
	generator QuoteGenerator
	listener  ChangeListener
	observer  Observer
	cfg       SessionConfig
	now       func() time.Time
}

// NewStreamUsecase creates a StreamUsecase. listener and observer may be nil.
func NewStreamUsecase(resolver SnapshotResolver, generator QuoteGenerator, listener ChangeListener, observer Observer, cfg SessionConfig) *StreamUsecase {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &StreamUsecase{
		resolver:  resolver,
		generator: generator,
		listener:  listener,
		observer:  observer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Open creates a session in the Connecting state. lastEventID is the id the
// client last saw (0 if none); new ids continue above it.
// The caller must Run or Close the returned session.
func (u *StreamUsecase) Open(ctx context.Context, userID uint, lastEventID int64, transport string) (*Session, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	s := &Session{
		userID:     userID,
		connID:     uuid.NewString(),
		transport:  transport,
		cfg:        u.cfg,
		resolver:   u.resolver,
		generator:  u.generator,
		observer:   u.observer,
		now:        u.now,
		stopListen: func() {},
		done:       make(chan struct{}),
	}
	if lastEventID > 0 {
		s.lastID.Store(lastEventID)
	}
	if u.listener != nil {
		s.changes, s.stopListen = u.listener.Listen(ctx, userID)
	}

	u.observer.SessionOpened(transport)
	slog.Info("stream session opened",
		"user_id", userID, "conn_id", s.connID, "transport", transport, "last_event_id", lastEventID)
	return s, nil
}

type nopObserver struct{}

func (nopObserver) SessionOpened(string)         {}
func (nopObserver) SessionClosed(string, string) {}
func (nopObserver) TickSent(int)                 {}
func (nopObserver) TickSkipped()                 {}
func (nopObserver) PushFailed()                  {}
func (nopObserver) ResolveFailed()               {}
