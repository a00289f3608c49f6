package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"averix/internal/metrics"
	"averix/internal/models"

	"github.com/google/uuid"
)

const (
	// MaxOrderShare caps an order at this fraction of the current balance.
	MaxOrderShare = 0.05
	// MockProfitRate is the fixed return of every mock-executed order.
	MockProfitRate = 0.02

	maxHistoryTrades = 50
)

type PlaceOrderInput struct {
	Symbol     string
	Side       string
	Amount     float64
	Price      float64
	StopLoss   *float64
	TakeProfit *float64
}

// InstrumentCatalog resolves quoted symbols. MarketDataService implements it.
type InstrumentCatalog interface {
	Instrument(symbol string) (Instrument, bool)
}

// TradePublisher receives every executed trade. TradeFeed implements it.
type TradePublisher interface {
	PublishTrade(t models.Trade)
}

// OrderService executes orders against a deterministic mock: each order closes
// immediately with a profit of MockProfitRate times the amount.
type OrderService struct {
	users     UserRepository
	trades    TradeRepository
	catalog   InstrumentCatalog
	publisher TradePublisher
	logger    *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewOrderService(users UserRepository, trades TradeRepository, catalog InstrumentCatalog, publisher TradePublisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		users:     users,
		trades:    trades,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// PlaceOrder validates the order against the user's balance as loaded for this
// request, then records the closed trade and credits its pnl. The risk check is
// not repeated atomically, so parallel orders are each measured against the
// same pre-trade balance. Symbols outside the catalog are accepted and logged.
func (s *OrderService) PlaceOrder(ctx context.Context, user *models.User, in PlaceOrderInput) (*models.Trade, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Amount > user.TFTBalance*MaxOrderShare {
		return nil, ErrRiskLimitExceeded
	}
	if !present(in.StopLoss) || !present(in.TakeProfit) {
		return nil, ErrMissingProtection
	}

	if s.catalog != nil {
		if _, ok := s.catalog.Instrument(in.Symbol); !ok {
			s.logger.Info("order for unlisted symbol",
				slog.String("user_id", user.ID),
				slog.String("symbol", in.Symbol))
		}
	}

	now := s.now()
	trade := models.NewTrade(s.newID(), user.ID, in.Symbol, in.Side, in.Amount, in.Price, *in.StopLoss, *in.TakeProfit, now)
	trade.Close(now, in.Amount*MockProfitRate)

	if err := s.trades.Create(ctx, trade); err != nil {
		return nil, fmt.Errorf("create trade: %w", err)
	}
	if err := s.users.RecordTrade(ctx, user.ID, trade.PnL, trade.PnL > 0); err != nil {
		return nil, fmt.Errorf("update trade stats: %w", err)
	}

	metrics.RecordOrder(trade.Side)
	s.logger.Info("order executed",
		slog.String("user_id", user.ID),
		slog.String("trade_id", trade.ID),
		slog.String("symbol", trade.Symbol),
		slog.String("side", trade.Side),
		slog.Float64("amount", trade.Amount),
		slog.Float64("pnl", trade.PnL))

	if s.publisher != nil {
		s.publisher.PublishTrade(*trade)
	}

	return trade, nil
}

func (s *OrderService) History(ctx context.Context, userID string) ([]models.Trade, error) {
	trades, err := s.trades.ListRecent(ctx, userID, maxHistoryTrades)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	return trades, nil
}

// A protection level of zero counts as absent.
func present(v *float64) bool {
	return v != nil && *v != 0
}
