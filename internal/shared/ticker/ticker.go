// Package ticker は配信対象となる銘柄の固定テーブルを提供します。
// テーブルはプロセス全体で共有される読み取り専用の設定です。
package ticker

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Ticker is a stock symbol drawn from the supported set.
type Ticker string

// Supported tickers.
const (
	GOOG Ticker = "GOOG"
	TSLA Ticker = "TSLA"
	AMZN Ticker = "AMZN"
	META Ticker = "META"
	NVDA Ticker = "NVDA"
)

// Stock は銘柄の表示名と価格生成の基準価格を保持します。
type Stock struct {
	Ticker    Ticker
	Name      string
	BasePrice decimal.Decimal
}

// 表示順は公開API（/stocks/available）の順序と一致させる。
var stocks = []Stock{
	{Ticker: GOOG, Name: "Alphabet Inc.", BasePrice: decimal.RequireFromString("175.50")},
	{Ticker: TSLA, Name: "Tesla, Inc.", BasePrice: decimal.RequireFromString("248.75")},
	{Ticker: AMZN, Name: "Amazon.com, Inc.", BasePrice: decimal.RequireFromString("185.25")},
	{Ticker: META, Name: "Meta Platforms, Inc.", BasePrice: decimal.RequireFromString("565.00")},
	{Ticker: NVDA, Name: "NVIDIA Corporation", BasePrice: decimal.RequireFromString("138.50")},
}

var index = func() map[Ticker]Stock {
	m := make(map[Ticker]Stock, len(stocks))
	for _, s := range stocks {
		m[s.Ticker] = s
	}
	return m
}()

// All returns a copy of the supported stock table in display order.
func All() []Stock {
	return slices.Clone(stocks)
}

// Lookup returns the stock for t and whether t is supported.
func Lookup(t Ticker) (Stock, bool) {
	s, ok := index[t]
	return s, ok
}

// Parse converts a raw string into a supported Ticker.
// The match is exact: "goog" is not GOOG.
func Parse(raw string) (Ticker, bool) {
	t := Ticker(raw)
	_, ok := index[t]
	return t, ok
}

// IsSupported reports whether t belongs to the supported set.
func (t Ticker) IsSupported() bool {
	_, ok := index[t]
	return ok
}

func (t Ticker) String() string { return string(t) }
