package handlers

import (
	"fmt"
	"log/slog"

	"averix/internal/metrics"
	"averix/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth    *services.AuthService
	Users   *services.UserService
	Staking *services.StakingService
	Orders  *services.OrderService
	Market  *services.MarketDataService
	Feed    *services.TradeFeed

	Logger         *slog.Logger
	CORSOrigins    []string
	TrustedProxies []string
	AuthRateLimit  float64
	AuthRateBurst  int
}

// NewRouter builds the gin engine with every route under /api. Forwarded
// client addresses are honoured only from d.TrustedProxies; with none set the
// peer address is the client IP.
func NewRouter(d Deps) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	router.Use(Recovery(d.Logger), RequestLogger(d.Logger), Metrics(), CORS(d.CORSOrigins))

	authHandler := NewAuthHandler(d.Auth, d.Logger)
	userHandler := NewUserHandler(d.Users, d.Logger)
	stakingHandler := NewStakingHandler(d.Staking, d.Logger)
	orderHandler := NewOrderHandler(d.Orders, d.Logger)
	marketHandler := NewMarketHandler(d.Market)
	feedHandler := NewFeedHandler(d.Feed, d.CORSOrigins, d.Logger)

	authMiddleware := authHandler.AuthMiddleware()
	limiter := NewRateLimiter(d.AuthRateLimit, d.AuthRateBurst, d.Logger)

	router.GET("/health", marketHandler.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.GET("/", marketHandler.Root)

	auth := api.Group("/auth", limiter.Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	user := api.Group("/user", authMiddleware)
	user.GET("/profile", userHandler.GetProfile)
	user.GET("/dashboard", userHandler.GetDashboard)

	staking := api.Group("/staking", authMiddleware)
	staking.POST("/stake", stakingHandler.CreateStake)
	staking.GET("/stakes", stakingHandler.GetStakes)

	trading := api.Group("/trading")
	trading.GET("/instruments", marketHandler.GetInstruments)
	trading.POST("/place-order", authMiddleware, orderHandler.PlaceOrder)
	trading.GET("/history", authMiddleware, orderHandler.GetHistory)

	api.GET("/public/stats", marketHandler.GetPublicStats)
	api.GET("/ws/trades", feedHandler.Subscribe)

	return router, nil
}
