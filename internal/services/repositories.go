package services

import (
	"context"

	"averix/internal/models"
)

// UserRepository is implemented by repository.MongoUsers and repository.MemoryUsers.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// MoveToStake fails with repository.ErrConditionFailed when the balance is below amount.
	MoveToStake(ctx context.Context, id string, amount float64) error
	ReleaseStake(ctx context.Context, id string, amount float64) error
	RecordTrade(ctx context.Context, id string, pnl float64, successful bool) error
}

type StakeRepository interface {
	Create(ctx context.Context, s *models.Stake) error
	ListByUser(ctx context.Context, userID string, activeOnly bool, limit int64) ([]models.Stake, error)
}

type TradeRepository interface {
	Create(ctx context.Context, t *models.Trade) error
	ListRecent(ctx context.Context, userID string, limit int64) ([]models.Trade, error)
}
