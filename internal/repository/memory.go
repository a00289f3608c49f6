package repository

import (
	"context"
	"slices"
	"sync"

	"averix/internal/models"
)

// Memory is an in-process backend. Records are copied on the way in and out
// so callers never share state with the store.
type Memory struct {
	Users  *MemoryUsers
	Stakes *MemoryStakes
	Trades *MemoryTrades
}

func NewMemory() *Memory {
	return &Memory{
		Users:  &MemoryUsers{byID: make(map[string]*models.User), byEmail: make(map[string]string)},
		Stakes: &MemoryStakes{},
		Trades: &MemoryTrades{},
	}
}

type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func (r *MemoryUsers) Create(_ context.Context, u *models.User) error {
	if err := checkRecord(u); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MemoryUsers) MoveToStake(_ context.Context, id string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.TFTBalance < amount {
		return ErrConditionFailed
	}
	u.TFTBalance -= amount
	u.StakedAmount += amount
	return nil
}

func (r *MemoryUsers) ReleaseStake(_ context.Context, id string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.TFTBalance += amount
	u.StakedAmount -= amount
	return nil
}

func (r *MemoryUsers) RecordTrade(_ context.Context, id string, pnl float64, successful bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.TotalTrades++
	if successful {
		u.SuccessfulTrades++
	}
	u.TFTBalance += pnl
	return nil
}

type MemoryStakes struct {
	mu     sync.RWMutex
	stakes []models.Stake
}

func (r *MemoryStakes) Create(_ context.Context, s *models.Stake) error {
	if err := checkRecord(s); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.stakes {
		if existing.ID == s.ID {
			return ErrDuplicate
		}
	}
	r.stakes = append(r.stakes, *s)
	return nil
}

func (r *MemoryStakes) ListByUser(_ context.Context, userID string, activeOnly bool, limit int64) ([]models.Stake, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Stake{}
	for _, s := range r.stakes {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		if s.UserID != userID || (activeOnly && !s.IsActive) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func copyTrade(t models.Trade) models.Trade {
	if t.ClosedAt != nil {
		closedAt := *t.ClosedAt
		t.ClosedAt = &closedAt
	}
	return t
}

type MemoryTrades struct {
	mu     sync.RWMutex
	trades []models.Trade
}

func (r *MemoryTrades) Create(_ context.Context, t *models.Trade) error {
	if err := checkRecord(t); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.trades {
		if existing.ID == t.ID {
			return ErrDuplicate
		}
	}
	r.trades = append(r.trades, copyTrade(*t))
	return nil
}

// ListRecent returns the user's trades newest first. Trades created at the
// same instant come back in reverse insertion order.
func (r *MemoryTrades) ListRecent(_ context.Context, userID string, limit int64) ([]models.Trade, error) {
	r.mu.RLock()
	out := []models.Trade{}
	for i := len(r.trades) - 1; i >= 0; i-- {
		if r.trades[i].UserID == userID {
			out = append(out, copyTrade(r.trades[i]))
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Trade) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
