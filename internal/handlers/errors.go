package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"averix/internal/services"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type domainError struct {
	err    error
	status int
	code   string
}

var domainErrors = []domainError{
	{services.ErrEmailTaken, http.StatusBadRequest, "EmailTaken"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "InvalidCredentials"},
	{services.ErrInvalidDuration, http.StatusBadRequest, "InvalidDuration"},
	{services.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
	{services.ErrInsufficientBalance, http.StatusBadRequest, "InsufficientBalance"},
	{services.ErrRiskLimitExceeded, http.StatusBadRequest, "RiskLimitExceeded"},
	{services.ErrMissingProtection, http.StatusBadRequest, "MissingProtection"},
}

// respondError writes the status and body for err. Anything that is not a
// known domain error is logged and reported as a 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	if errors.Is(err, services.ErrUnauthorized) {
		msg := "Invalid token"
		if errors.Is(err, services.ErrUserNotFound) {
			msg = "User not found"
		}
		abortJSON(c, http.StatusUnauthorized, msg, "Unauthorized")
		return
	}

	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			abortJSON(c, d.status, d.err.Error(), d.code)
			return
		}
	}

	logger.Error("request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Any("error", err))
	abortJSON(c, http.StatusInternalServerError, "internal server error", "Internal")
}

func badRequest(c *gin.Context, err error) {
	abortJSON(c, http.StatusBadRequest, "Invalid request: "+err.Error(), "ValidationError")
}

func abortJSON(c *gin.Context, status int, msg, code string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}
