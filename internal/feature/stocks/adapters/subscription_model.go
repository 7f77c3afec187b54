package adapters

import (
	"time"

	"stock_stream/internal/feature/stocks/domain/entity"
	"stock_stream/internal/shared/ticker"
)

// SubscriptionModel is the GORM model for the subscriptions table.
// The composite unique index enforces one row per (user_id, ticker).
type SubscriptionModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscriptions_user_ticker,priority:1"`
	Ticker    string    `gorm:"size:16;not null;uniqueIndex:idx_subscriptions_user_ticker,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SubscriptionModel) ToEntity() entity.Subscription {
	return entity.Subscription{
		ID:        m.ID,
		UserID:    m.UserID,
		Ticker:    ticker.Ticker(m.Ticker),
		CreatedAt: m.CreatedAt,
	}
}

// SubscriptionModelFromEntity converts a domain entity to a GORM model.
func SubscriptionModelFromEntity(s *entity.Subscription) *SubscriptionModel {
	return &SubscriptionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		Ticker:    string(s.Ticker),
		CreatedAt: s.CreatedAt,
	}
}
