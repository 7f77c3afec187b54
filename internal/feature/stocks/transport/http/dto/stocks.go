// Package dto はstocksフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "time"

// StockItem is one row of GET /stocks/available.
type StockItem struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"basePrice"`
}

// AvailableRes is the response body of GET /stocks/available.
type AvailableRes struct {
	Stocks []StockItem `json:"stocks"`
}

// SubscriptionItem is one row of GET /stocks/subscriptions.
type SubscriptionItem struct {
	Ticker    string    `json:"ticker"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubscriptionsRes is the response body of GET /stocks/subscriptions.
type SubscriptionsRes struct {
	Subscriptions []SubscriptionItem `json:"subscriptions"`
}

// SubscribeReq は POST /stocks/subscribe のリクエストボディです。
// 銘柄の妥当性はusecaseで検証するため、ここでは必須チェックのみ行います。
type SubscribeReq struct {
	Ticker string `json:"ticker" binding:"required"`
}

// Subscription is the created resource returned with 201.
type Subscription struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"userId"`
	Ticker    string    `json:"ticker"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubscribeRes is the response body of POST /stocks/subscribe.
type SubscribeRes struct {
	Subscription Subscription `json:"subscription"`
}

// MessageRes is a generic {message} body.
type MessageRes struct {
	Message string `json:"message"`
}

// ErrorRes is a generic {error} body.
type ErrorRes struct {
	Error string `json:"error"`
}
