package services

import (
	"context"
	"fmt"

	"averix/internal/models"
)

const (
	maxDashboardStakes = 100
	maxDashboardTrades = 10
)

type Dashboard struct {
	User         models.User    `json:"user"`
	TotalStaked  float64        `json:"total_staked"`
	TotalRewards float64        `json:"total_rewards"`
	ActiveStakes int            `json:"active_stakes"`
	RecentTrades []models.Trade `json:"recent_trades"`
}

type UserService struct {
	stakes StakeRepository
	trades TradeRepository
}

func NewUserService(stakes StakeRepository, trades TradeRepository) *UserService {
	return &UserService{stakes: stakes, trades: trades}
}

// Dashboard aggregates the user's active stakes and ten most recent trades.
func (s *UserService) Dashboard(ctx context.Context, user *models.User) (*Dashboard, error) {
	stakes, err := s.stakes.ListByUser(ctx, user.ID, true, maxDashboardStakes)
	if err != nil {
		return nil, fmt.Errorf("list active stakes: %w", err)
	}

	trades, err := s.trades.ListRecent(ctx, user.ID, maxDashboardTrades)
	if err != nil {
		return nil, fmt.Errorf("list recent trades: %w", err)
	}

	d := &Dashboard{
		User:         user.Public(),
		ActiveStakes: len(stakes),
		RecentTrades: trades,
	}
	for _, st := range stakes {
		d.TotalStaked += st.Amount
		d.TotalRewards += st.RewardsEarned
	}
	return d, nil
}
