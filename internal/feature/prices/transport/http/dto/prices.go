// Package dto はpricesフィーチャーのストリームメッセージ形式を定義します。
package dto

import (
	"stock_stream/internal/feature/prices/domain/entity"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// PriceItem is one quote inside a batch.
type PriceItem struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	Timestamp string  `json:"timestamp"`
}

// PricesData is the SSE data payload: {"prices":[...]}.
type PricesData struct {
	Prices []PriceItem `json:"prices"`
}

// WSFrame is one WebSocket text frame.
type WSFrame struct {
	Event string     `json:"event"`
	ID    int64      `json:"id"`
	Data  PricesData `json:"data"`
}

// FromBatch converts a batch. An empty batch yields "prices":[] rather than null.
func FromBatch(b entity.Batch) PricesData {
	items := make([]PriceItem, 0, len(b.Quotes))
	for _, q := range b.Quotes {
		items = append(items, PriceItem{
			Ticker:    string(q.Ticker),
			Price:     q.Price.InexactFloat64(),
			Change:    q.Change.InexactFloat64(),
			Timestamp: q.Timestamp.UTC().Format(TimestampLayout),
		})
	}
	return PricesData{Prices: items}
}
