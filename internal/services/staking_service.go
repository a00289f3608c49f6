package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"averix/internal/metrics"
	"averix/internal/models"
	"averix/internal/repository"

	"github.com/google/uuid"
)

const (
	maxListedStakes = 100
	// releaseTimeout bounds the balance restore after a failed stake insert.
	releaseTimeout = 5 * time.Second
)

// StakingService locks TFT into stakes. Nothing ever matures a stake, accrues
// rewards_earned or returns the principal; those are not implemented.
type StakingService struct {
	users  UserRepository
	stakes StakeRepository
	logger *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewStakingService(users UserRepository, stakes StakeRepository, logger *slog.Logger) *StakingService {
	return &StakingService{
		users:  users,
		stakes: stakes,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Stake moves amount from the user's balance into a new stake. The balance move
// is conditional on the stored balance, so concurrent requests cannot overdraw.
func (s *StakingService) Stake(ctx context.Context, user *models.User, amount float64, durationDays int) (*models.Stake, error) {
	if !models.ValidStakeDuration(durationDays) {
		return nil, ErrInvalidDuration
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > user.TFTBalance {
		return nil, ErrInsufficientBalance
	}

	stake := models.NewStake(s.newID(), user.ID, amount, durationDays, s.now())

	if err := s.users.MoveToStake(ctx, user.ID, amount); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("move balance: %w", err)
	}

	if err := s.stakes.Create(ctx, stake); err != nil {
		// The request context may be what failed the insert.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if rerr := s.users.ReleaseStake(releaseCtx, user.ID, amount); rerr != nil {
			s.logger.Error("failed to restore balance after stake insert failure",
				slog.String("user_id", user.ID),
				slog.Float64("amount", amount),
				slog.Any("error", rerr))
		}
		return nil, fmt.Errorf("create stake: %w", err)
	}

	metrics.RecordStake(durationDays)
	s.logger.Info("stake created",
		slog.String("user_id", user.ID),
		slog.String("stake_id", stake.ID),
		slog.Float64("amount", amount),
		slog.Int("duration_days", durationDays))

	return stake, nil
}

func (s *StakingService) ListStakes(ctx context.Context, userID string) ([]models.Stake, error) {
	stakes, err := s.stakes.ListByUser(ctx, userID, false, maxListedStakes)
	if err != nil {
		return nil, fmt.Errorf("list stakes: %w", err)
	}
	return stakes, nil
}
