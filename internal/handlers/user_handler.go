package handlers

import (
	"log/slog"
	"net/http"

	"averix/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *UserHandler) GetDashboard(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	dashboard, err := h.userService.Dashboard(c.Request.Context(), user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
