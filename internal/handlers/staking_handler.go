package handlers

import (
	"log/slog"
	"net/http"

	"averix/internal/services"

	"github.com/gin-gonic/gin"
)

type StakingHandler struct {
	stakingService *services.StakingService
	logger         *slog.Logger
}

func NewStakingHandler(stakingService *services.StakingService, logger *slog.Logger) *StakingHandler {
	return &StakingHandler{stakingService: stakingService, logger: logger}
}

// StakeRequest is validated by the service so duration errors win over amount errors.
type StakeRequest struct {
	Amount       float64 `json:"amount"`
	DurationDays int     `json:"duration_days"`
}

func (h *StakingHandler) CreateStake(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	stake, err := h.stakingService.Stake(c.Request.Context(), user, req.Amount, req.DurationDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stake created successfully",
		"stake":   stake,
	})
}

func (h *StakingHandler) GetStakes(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	stakes, err := h.stakingService.ListStakes(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stakes": stakes})
}
