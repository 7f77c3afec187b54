package usecase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"stock_stream/internal/shared/ticker"
)

// seqRand returns the given values in order, repeating the last one.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	v := r.vals[min(r.i, len(r.vals)-1)]
	r.i++
	return v
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestRandomGenerator_Deterministic(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name       string
		base       string
		draws      []float64
		wantPrice  string
		wantChange string
	}{
		{"lower bound", "100", []float64{0, 0}, "95", "-2"},
		{"midpoint", "175.50", []float64{0.5, 0.5}, "175.5", "0"},
		{"near upper bound", "100", []float64{0.9999999, 0.9999999}, "105", "2"},
		{"rounds to cents", "248.75", []float64{0.6, 0.25}, "251.24", "-1"},
		{"out of range source is clamped", "100", []float64{1.7, -3}, "105", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := NewRandomGenerator(&seqRand{vals: tt.draws}, fixedClock{at})
			q := g.Generate(ticker.GOOG, decimal.RequireFromString(tt.base))

			assert.Equal(t, ticker.GOOG, q.Ticker)
			assert.True(t, q.Price.Equal(decimal.RequireFromString(tt.wantPrice)), "price %s", q.Price)
			assert.True(t, q.Change.Equal(decimal.RequireFromString(tt.wantChange)), "change %s", q.Change)
			assert.Equal(t, at, q.Timestamp)
		})
	}
}

func TestRandomGenerator_Bounds(t *testing.T) {
	t.Parallel()

	g := NewRandomGenerator(nil, nil)
	base := decimal.NewFromInt(100)
	lo, hi := decimal.NewFromInt(95), decimal.NewFromInt(105)
	cLo, cHi := decimal.NewFromInt(-2), decimal.NewFromInt(2)

	for range 10000 {
		q := g.Generate(ticker.NVDA, base)

		if q.Price.LessThan(lo) || q.Price.GreaterThan(hi) {
			t.Fatalf("price out of range: %s", q.Price)
		}
		if q.Change.LessThan(cLo) || q.Change.GreaterThan(cHi) {
			t.Fatalf("change out of range: %s", q.Change)
		}
		if !q.Price.Equal(q.Price.Round(2)) || !q.Change.Equal(q.Change.Round(2)) {
			t.Fatalf("not rounded to 2 places: %s / %s", q.Price, q.Change)
		}
	}
}

func TestRandomGenerator_PriceStaysPositive(t *testing.T) {
	t.Parallel()

	g := NewRandomGenerator(&seqRand{vals: []float64{0}}, fixedClock{})
	q := g.Generate(ticker.TSLA, decimal.RequireFromString("0.001"))

	assert.True(t, q.Price.IsPositive())
	assert.True(t, q.Price.Equal(decimal.RequireFromString("0.01")))
}
