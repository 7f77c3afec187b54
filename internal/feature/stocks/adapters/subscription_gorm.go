// Package adapters はstocksフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"

	"stock_stream/internal/feature/stocks/domain/entity"
	"stock_stream/internal/feature/stocks/usecase"
	"stock_stream/internal/platform/db"
	"stock_stream/internal/shared/ticker"
)

// subscriptionGorm はSubscriptionRepositoryのGORM実装です。
// SQLite / PostgreSQL / MySQL のいずれでも動作します。
type subscriptionGorm struct {
	db *gorm.DB
}

var _ usecase.SubscriptionRepository = (*subscriptionGorm)(nil)

// NewSubscriptionRepository は指定されたDB接続でsubscriptionGormの新しいインスタンスを生成します。
func NewSubscriptionRepository(db *gorm.DB) *subscriptionGorm {
	return &subscriptionGorm{db: db}
}

// Create はサブスクリプションを追加します。
// 一意制約違反は usecase.ErrAlreadySubscribed に変換します。
func (r *subscriptionGorm) Create(ctx context.Context, sub *entity.Subscription) error {
	if err := r.db.WithContext(ctx).Create(SubscriptionModelFromEntity(sub)).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return usecase.ErrAlreadySubscribed
		}
		return err
	}
	return nil
}

// ListByUser はユーザーのサブスクリプションを作成日時の昇順で返します。
func (r *subscriptionGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Subscription, error) {
	var models []SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("ticker ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	subs := make([]entity.Subscription, len(models))
	for i := range models {
		subs[i] = models[i].ToEntity()
	}
	return subs, nil
}

// ListTickers はユーザーが購読中の銘柄コードのみを返します。
// ストリーミングの各tickで呼ばれるため、tickerカラムだけを射影します。
func (r *subscriptionGorm) ListTickers(ctx context.Context, userID uint) ([]string, error) {
	var tickers []string
	if err := r.db.WithContext(ctx).
		Model(&SubscriptionModel{}).
		Where("user_id = ?", userID).
		Order("ticker ASC").
		Pluck("ticker", &tickers).Error; err != nil {
		return nil, err
	}
	return tickers, nil
}

// Delete は (userID, ticker) に一致する行を削除します。該当なしでも成功です。
func (r *subscriptionGorm) Delete(ctx context.Context, userID uint, t ticker.Ticker) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, string(t)).
		Delete(&SubscriptionModel{})
	return result.RowsAffected, result.Error
}
