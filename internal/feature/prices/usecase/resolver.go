package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"stock_stream/internal/shared/ticker"
)

// TickerReader reads the raw tickers stored for a user.
// Goの慣例に従い、インターフェースはコンシューマー（usecase）が定義します。
type TickerReader interface {
	ListTickers(ctx context.Context, userID uint) ([]string, error)
}

// Resolver reads a user's subscription snapshot from the store on every call.
// No caching: the result reflects the store as of the call.
type Resolver struct {
	store TickerReader
}

func NewResolver(store TickerReader) *Resolver {
	return &Resolver{store: store}
}

// CurrentTickers returns the user's subscribed tickers sorted ascending without duplicates.
// Store failures are wrapped with ErrStoreUnavailable.
func (r *Resolver) CurrentTickers(ctx context.Context, userID uint) ([]ticker.Ticker, error) {
	raw, err := r.store.ListTickers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	out := make([]ticker.Ticker, 0, len(raw))
	for _, s := range raw {
		t, ok := ticker.Parse(s)
		if !ok {
			// 対応外の銘柄が保存されている（不変条件違反）。配信対象から外す
			slog.Warn("unsupported ticker in subscription store", "user_id", userID, "ticker", s)
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
