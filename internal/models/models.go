package models

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"

	TradeStatusOpen   = "open"
	TradeStatusClosed = "closed"
)

// StakeDurations lists the lock periods, in days, a stake may be opened for.
var StakeDurations = []int{14, 30, 90, 180, 360}

// ValidStakeDuration reports whether days is one of StakeDurations.
func ValidStakeDuration(days int) bool {
	return slices.Contains(StakeDurations, days)
}

// Stake is a locked amount of TFT. Rewards are never accrued and the stake is
// never deactivated; both fields keep their creation values.
type Stake struct {
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	Amount        float64   `bson:"amount" json:"amount"`
	DurationDays  int       `bson:"duration_days" json:"duration_days"`
	StartDate     time.Time `bson:"start_date" json:"start_date"`
	EndDate       time.Time `bson:"end_date" json:"end_date"`
	IsActive      bool      `bson:"is_active" json:"is_active"`
	RewardsEarned float64   `bson:"rewards_earned" json:"rewards_earned"`
}

func NewStake(id, userID string, amount float64, durationDays int, start time.Time) *Stake {
	return &Stake{
		ID:           id,
		UserID:       userID,
		Amount:       amount,
		DurationDays: durationDays,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, durationDays),
		IsActive:     true,
	}
}

func (s *Stake) Validate() error {
	switch {
	case s.ID == "":
		return errors.New("stake: missing id")
	case s.UserID == "":
		return errors.New("stake: missing user_id")
	case s.Amount <= 0:
		return fmt.Errorf("stake: non-positive amount %v", s.Amount)
	case !ValidStakeDuration(s.DurationDays):
		return fmt.Errorf("stake: invalid duration %d", s.DurationDays)
	case !s.EndDate.After(s.StartDate):
		return errors.New("stake: end_date not after start_date")
	}
	return nil
}

type Trade struct {
	ID         string     `bson:"id" json:"id"`
	UserID     string     `bson:"user_id" json:"user_id"`
	Symbol     string     `bson:"symbol" json:"symbol"`
	Side       string     `bson:"side" json:"side"` // "buy" or "sell"
	Amount     float64    `bson:"amount" json:"amount"`
	Price      float64    `bson:"price" json:"price"`
	StopLoss   float64    `bson:"stop_loss" json:"stop_loss"`
	TakeProfit float64    `bson:"take_profit" json:"take_profit"`
	Status     string     `bson:"status" json:"status"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	ClosedAt   *time.Time `bson:"closed_at,omitempty" json:"closed_at"`
	PnL        float64    `bson:"pnl" json:"pnl"`
}

// NewTrade builds an open trade. Close finalizes it.
func NewTrade(id, userID, symbol, side string, amount, price, stopLoss, takeProfit float64, createdAt time.Time) *Trade {
	return &Trade{
		ID:         id,
		UserID:     userID,
		Symbol:     symbol,
		Side:       side,
		Amount:     amount,
		Price:      price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		Status:     TradeStatusOpen,
		CreatedAt:  createdAt,
	}
}

// Close marks the trade closed at the given time with the given result.
func (t *Trade) Close(at time.Time, pnl float64) {
	t.Status = TradeStatusClosed
	t.ClosedAt = &at
	t.PnL = pnl
}

func (t *Trade) Validate() error {
	switch {
	case t.ID == "":
		return errors.New("trade: missing id")
	case t.UserID == "":
		return errors.New("trade: missing user_id")
	case t.Symbol == "":
		return errors.New("trade: missing symbol")
	case t.Side != SideBuy && t.Side != SideSell:
		return fmt.Errorf("trade: invalid side %q", t.Side)
	case t.Status != TradeStatusOpen && t.Status != TradeStatusClosed:
		return fmt.Errorf("trade: invalid status %q", t.Status)
	case t.Status == TradeStatusClosed && t.ClosedAt == nil:
		return errors.New("trade: closed without closed_at")
	}
	return nil
}
