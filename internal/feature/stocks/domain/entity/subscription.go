// Package entity defines the domain models for the stocks feature.
package entity

import (
	"time"

	"stock_stream/internal/shared/ticker"
)

// Subscription records that a user wants live price updates for a ticker.
// A (UserID, Ticker) pair is unique. Subscriptions are created and deleted,
// never updated in place.
type Subscription struct {
	ID        string        // UUID assigned on creation
	UserID    uint          // Owning user
	Ticker    ticker.Ticker // Always a member of the supported set
	CreatedAt time.Time
}
