package handlers

import (
	"log/slog"
	"net/http"

	"averix/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService *services.OrderService
	logger       *slog.Logger
}

func NewOrderHandler(orderService *services.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orderService: orderService, logger: logger}
}

// PlaceOrderRequest mirrors a trade as submitted by the client. UserID is
// accepted but ignored; the trade is always booked to the authenticated user.
type PlaceOrderRequest struct {
	UserID     string   `json:"user_id"`
	Symbol     string   `json:"symbol" binding:"required"`
	Side       string   `json:"side" binding:"required,oneof=buy sell"`
	Amount     float64  `json:"amount"`
	Price      float64  `json:"price" binding:"gte=0"`
	StopLoss   *float64 `json:"stop_loss"`
	TakeProfit *float64 `json:"take_profit"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	trade, err := h.orderService.PlaceOrder(c.Request.Context(), user, services.PlaceOrderInput{
		Symbol:     req.Symbol,
		Side:       req.Side,
		Amount:     req.Amount,
		Price:      req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order placed successfully",
		"trade":   trade,
	})
}

func (h *OrderHandler) GetHistory(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	trades, err := h.orderService.History(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trades": trades})
}
