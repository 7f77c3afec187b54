package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stock_stream/internal/feature/stocks/domain/entity"
	"stock_stream/internal/shared/ticker"
)

// SubscriptionRepository はサブスクリプションの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type SubscriptionRepository interface {
	// Create は新しいサブスクリプションを保存します。
	// 同じ (userID, ticker) が既に存在する場合は ErrAlreadySubscribed を返します。
	Create(ctx context.Context, sub *entity.Subscription) error

	// ListByUser はユーザーのサブスクリプションを作成日時の昇順で返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Subscription, error)

	// Delete は (userID, ticker) に一致する行を削除し、削除件数を返します。
	// 該当行がなくてもエラーにはなりません。
	Delete(ctx context.Context, userID uint, t ticker.Ticker) (int64, error)
}

// ChangeNotifier publishes "this user's subscription set changed" signals.
// Notify must not block on any streaming session.
type ChangeNotifier interface {
	Notify(ctx context.Context, userID uint) error
}

// SubscriptionUsecase implements subscribe / unsubscribe / list operations.
// It only talks to the store; active streams pick up changes on their next tick.
type SubscriptionUsecase struct {
	repo     SubscriptionRepository
	notifier ChangeNotifier
	now      func() time.Time
}

// NewSubscriptionUsecase creates a SubscriptionUsecase. notifier may be nil.
func NewSubscriptionUsecase(repo SubscriptionRepository, notifier ChangeNotifier) *SubscriptionUsecase {
	return &SubscriptionUsecase{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// ListAvailable returns the supported stock table.
func (u *SubscriptionUsecase) ListAvailable() []ticker.Stock {
	return ticker.All()
}

// ListSubscriptions returns the user's current subscriptions.
func (u *SubscriptionUsecase) ListSubscriptions(ctx context.Context, userID uint) ([]entity.Subscription, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	subs, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// Subscribe は銘柄の妥当性を検証し、サブスクリプションを作成します。
// 未対応の銘柄は ErrInvalidTicker、重複は ErrAlreadySubscribed を返します。
func (u *SubscriptionUsecase) Subscribe(ctx context.Context, userID uint, raw string) (*entity.Subscription, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	t, ok := ticker.Parse(raw)
	if !ok {
		return nil, ErrInvalidTicker
	}

	sub := &entity.Subscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		Ticker:    t,
		CreatedAt: u.now().UTC(),
	}
	if err := u.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	u.notify(ctx, userID)
	return sub, nil
}

// Unsubscribe は (userID, ticker) のサブスクリプションを削除します。
// 既に存在しない場合も成功として扱います（冪等）。
func (u *SubscriptionUsecase) Unsubscribe(ctx context.Context, userID uint, raw string) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	t, ok := ticker.Parse(raw)
	if !ok {
		return ErrInvalidTicker
	}

	deleted, err := u.repo.Delete(ctx, userID, t)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if deleted > 0 {
		u.notify(ctx, userID)
	}
	return nil
}

// notify is best effort: a lost signal only delays the change until the next tick.
func (u *SubscriptionUsecase) notify(ctx context.Context, userID uint) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.Notify(ctx, userID); err != nil {
		slog.Warn("subscription change notify failed", "user_id", userID, "error", err)
	}
}
