package usecase

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"stock_stream/internal/feature/prices/domain/entity"
	"stock_stream/internal/shared/ticker"
)

// Rand is the randomness source used by the generator. Float64 returns a value in [0, 1).
type Rand interface {
	Float64() float64
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// QuoteGenerator produces one quote for a ticker. Swappable for a real feed.
type QuoteGenerator interface {
	Generate(t ticker.Ticker, basePrice decimal.Decimal) entity.PriceQuote
}

type RealRand struct{}

func (RealRand) Float64() float64 { return rand.Float64() }

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now().UTC() }

var (
	priceSpread  = decimal.NewFromFloat(0.1) // ±5%
	changeSpread = decimal.NewFromInt(4)     // ±2
	half         = decimal.NewFromFloat(0.5)
	minPrice     = decimal.New(1, -2) // 0.01
)

// RandomGenerator perturbs the base price by up to ±5% and draws an
// independent change percent in [-2, 2]. Both are rounded to 2 places.
type RandomGenerator struct {
	rand  Rand
	clock Clock
}

var _ QuoteGenerator = (*RandomGenerator)(nil)

// NewRandomGenerator returns a generator. nil arguments fall back to RealRand and RealClock.
func NewRandomGenerator(rnd Rand, clock Clock) *RandomGenerator {
	if rnd == nil {
		rnd = RealRand{}
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &RandomGenerator{rand: rnd, clock: clock}
}

func (g *RandomGenerator) Generate(t ticker.Ticker, basePrice decimal.Decimal) entity.PriceQuote {
	variation := g.draw().Mul(priceSpread)
	price := basePrice.Mul(decimal.NewFromInt(1).Add(variation)).Round(2)
	if price.LessThan(minPrice) {
		price = minPrice
	}
	change := g.draw().Mul(changeSpread).Round(2)

	return entity.PriceQuote{
		Ticker:    t,
		Price:     price,
		Change:    change,
		Timestamp: g.clock.Now(),
	}
}

// draw returns r-0.5 in [-0.5, 0.5). Out-of-range sources are clamped.
func (g *RandomGenerator) draw() decimal.Decimal {
	r := g.rand.Float64()
	switch {
	case r < 0:
		r = 0
	case r > 1:
		r = 1
	}
	return decimal.NewFromFloat(r).Sub(half)
}
