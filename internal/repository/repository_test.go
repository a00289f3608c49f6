package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"averix/config"
	"averix/internal/models"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepo interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	MoveToStake(ctx context.Context, id string, amount float64) error
	ReleaseStake(ctx context.Context, id string, amount float64) error
	RecordTrade(ctx context.Context, id string, pnl float64, successful bool) error
}

type stakeRepo interface {
	Create(ctx context.Context, s *models.Stake) error
	ListByUser(ctx context.Context, userID string, activeOnly bool, limit int64) ([]models.Stake, error)
}

type tradeRepo interface {
	Create(ctx context.Context, t *models.Trade) error
	ListRecent(ctx context.Context, userID string, limit int64) ([]models.Trade, error)
}

type backend struct {
	users  userRepo
	stakes stakeRepo
	trades tradeRepo
}

var base = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, b backend, id, email string, balance float64) {
	t.Helper()
	u := models.NewUser(id, email, "hash", "F", "L", balance, base)
	require.NoError(t, b.users.Create(context.Background(), u))
}

func testBackend(t *testing.T, newBackend func(t *testing.T) backend) {
	ctx := context.Background()

	t.Run("user create and find", func(t *testing.T) {
		b := newBackend(t)
		seedUser(t, b, "u1", "a@x.io", 1000)

		byID, err := b.users.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "a@x.io", byID.Email)
		assert.Equal(t, "hash", byID.Password)

		byEmail, err := b.users.FindByEmail(ctx, "a@x.io")
		require.NoError(t, err)
		assert.Equal(t, "u1", byEmail.ID)

		_, err = b.users.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = b.users.FindByEmail(ctx, "missing@x.io")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		b := newBackend(t)
		seedUser(t, b, "u1", "a@x.io", 1000)

		err := b.users.Create(ctx, models.NewUser("u2", "a@x.io", "hash", "F", "L", 1000, base))
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("invalid user rejected", func(t *testing.T) {
		b := newBackend(t)
		err := b.users.Create(ctx, models.NewUser("", "a@x.io", "hash", "F", "L", 1000, base))
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("move to stake is conditional", func(t *testing.T) {
		b := newBackend(t)
		seedUser(t, b, "u1", "a@x.io", 100)

		require.NoError(t, b.users.MoveToStake(ctx, "u1", 60))
		assert.ErrorIs(t, b.users.MoveToStake(ctx, "u1", 60), ErrConditionFailed)
		assert.ErrorIs(t, b.users.MoveToStake(ctx, "missing", 1), ErrConditionFailed)

		u, err := b.users.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.InDelta(t, 40, u.TFTBalance, 1e-9)
		assert.InDelta(t, 60, u.StakedAmount, 1e-9)

		require.NoError(t, b.users.ReleaseStake(ctx, "u1", 60))
		u, err = b.users.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.InDelta(t, 100, u.TFTBalance, 1e-9)
		assert.InDelta(t, 0, u.StakedAmount, 1e-9)
	})

	t.Run("concurrent stakes never overdraw", func(t *testing.T) {
		b := newBackend(t)
		seedUser(t, b, "u1", "a@x.io", 100)

		var wg sync.WaitGroup
		results := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- b.users.MoveToStake(ctx, "u1", 30)
			}()
		}
		wg.Wait()
		close(results)

		ok := 0
		for err := range results {
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, ErrConditionFailed)
			}
		}
		assert.Equal(t, 3, ok)

		u, err := b.users.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.InDelta(t, 10, u.TFTBalance, 1e-9)
		assert.InDelta(t, 90, u.StakedAmount, 1e-9)
	})

	t.Run("record trade increments counters and balance", func(t *testing.T) {
		b := newBackend(t)
		seedUser(t, b, "u1", "a@x.io", 1000)

		require.NoError(t, b.users.RecordTrade(ctx, "u1", 0.2, true))
		require.NoError(t, b.users.RecordTrade(ctx, "u1", -1, false))
		assert.ErrorIs(t, b.users.RecordTrade(ctx, "missing", 1, true), ErrNotFound)

		u, err := b.users.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, u.TotalTrades)
		assert.Equal(t, 1, u.SuccessfulTrades)
		assert.InDelta(t, 999.2, u.TFTBalance, 1e-9)
	})

	t.Run("stakes listed per user", func(t *testing.T) {
		b := newBackend(t)
		for i, owner := range []string{"u1", "u2", "u1"} {
			s := models.NewStake(fmt.Sprintf("s%d", i), owner, float64(10*(i+1)), 30, base.Add(time.Duration(i)*time.Minute))
			require.NoError(t, b.stakes.Create(ctx, s))
		}

		list, err := b.stakes.ListByUser(ctx, "u1", true, 100)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "s0", list[0].ID)
		assert.Equal(t, "s2", list[1].ID)

		empty, err := b.stakes.ListByUser(ctx, "nobody", false, 100)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		assert.ErrorIs(t, b.stakes.Create(ctx, models.NewStake("bad", "u1", 10, 7, base)), ErrInvalidRecord)
	})

	t.Run("trades newest first with limit", func(t *testing.T) {
		b := newBackend(t)
		for i := 0; i < 12; i++ {
			tr := models.NewTrade(fmt.Sprintf("t%02d", i), "u1", "BTC/USDT", models.SideBuy, 1, 45000, 1, 2, base.Add(time.Duration(i)*time.Second))
			tr.Close(tr.CreatedAt, 0.02)
			require.NoError(t, b.trades.Create(ctx, tr))
		}
		other := models.NewTrade("x", "u2", "ETH/USDT", models.SideSell, 1, 2800, 1, 2, base)
		require.NoError(t, b.trades.Create(ctx, other))

		recent, err := b.trades.ListRecent(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, recent, 10)
		assert.Equal(t, "t11", recent[0].ID)
		assert.Equal(t, "t02", recent[9].ID)
		for i := 1; i < len(recent); i++ {
			assert.False(t, recent[i].CreatedAt.After(recent[i-1].CreatedAt))
		}
		require.NotNil(t, recent[0].ClosedAt)
		assert.Equal(t, models.TradeStatusClosed, recent[0].Status)
	})
}

func TestMemory(t *testing.T) {
	testBackend(t, func(t *testing.T) backend {
		m := NewMemory()
		return backend{users: m.Users, stakes: m.Stakes, trades: m.Trades}
	})
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Users.Create(ctx, models.NewUser("u1", "a@x.io", "hash", "F", "L", 1000, base)))

	u, err := m.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	u.TFTBalance = 0

	again, err := m.Users.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, again.TFTBalance)

	trade := models.NewTrade("t1", "u1", "BTC/USDT", models.SideBuy, 10, 45000, 44000, 46000, base)
	trade.Close(base, 0.2)
	require.NoError(t, m.Trades.Create(ctx, trade))

	listed, err := m.Trades.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].ClosedAt)
	*listed[0].ClosedAt = base.Add(time.Hour)

	relisted, err := m.Trades.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, relisted, 1)
	assert.Equal(t, base, *relisted[0].ClosedAt)
}

func TestMongo(t *testing.T) {
	_ = godotenv.Load("../../.env")
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx := context.Background()
	client, err := config.ConnectDB(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = config.DisconnectDB(client) })

	n := 0
	testBackend(t, func(t *testing.T) backend {
		n++
		dbName := fmt.Sprintf("averix_test_%d_%d", time.Now().UnixNano(), n)
		m, err := NewMongo(ctx, client, dbName)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Database(dbName).Drop(context.Background()) })
		return backend{users: m.Users, stakes: m.Stakes, trades: m.Trades}
	})
}
