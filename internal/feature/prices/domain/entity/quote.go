package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"stock_stream/internal/shared/ticker"
)

// EventPrices is the event name carried by every batch message.
const EventPrices = "prices"

// PriceQuote is a synthetic quote produced for one tick. Never persisted.
type PriceQuote struct {
	Ticker    ticker.Ticker
	Price     decimal.Decimal
	Change    decimal.Decimal // percent
	Timestamp time.Time
}

// Batch is everything pushed to one client in one tick.
// Quotes are ordered by ticker ascending and may be empty (heartbeat).
type Batch struct {
	ID     int64
	Quotes []PriceQuote
}
