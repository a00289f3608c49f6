package handlers

import (
	"net/http"

	"averix/internal/services"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

type MarketHandler struct {
	marketService *services.MarketDataService
}

func NewMarketHandler(marketService *services.MarketDataService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

func (h *MarketHandler) GetInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instruments": h.marketService.Instruments()})
}

func (h *MarketHandler) GetPublicStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.marketService.Stats())
}

func (h *MarketHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Averix API is running",
		"version": apiVersion,
	})
}

func (h *MarketHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
