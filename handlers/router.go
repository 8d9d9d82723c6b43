package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/config"
	"github.com/SaugatGautam100/courseplex-sub001/middleware"
)

// NewRouter wires middleware and every route. Admin routes are rejected by
// the auth middleware before any handler touches the store.
func NewRouter(cfg *config.Config, h *Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("⚠️ invalid TRUSTED_PROXIES, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.SetupCORS(cfg))

	r.GET("/metrics", MetricsHandler())

	api := r.Group("/api")
	{
		api.GET("/health", HealthHandler)
		api.GET("/leaderboards", h.LeaderboardsHandler)
		api.GET("/leaderboards/stream", h.LeaderboardStreamHandler)

		authAPI := api.Group("/")
		authAPI.Use(middleware.AuthMiddleware(cfg))
		{
			authAPI.GET("/users/:id/earnings", h.UserEarningsHandler)
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware(cfg), limiter.Middleware())
	{
		admin.GET("/achievers", h.AchieversHandler)
		admin.GET("/monthly-target", h.GetMonthlyTargetHandler)
		admin.PUT("/monthly-target", h.UpdateMonthlyTargetHandler)
		admin.POST("/prizes", h.AwardPrizeHandler)
		admin.DELETE("/users/:id", h.DeleteUserHandler)
		admin.POST("/orders/:id/approve", h.ApproveOrderHandler)
		admin.POST("/orders/:id/reject", h.RejectOrderHandler)
		admin.POST("/kyc/:id/review", h.ReviewKYCHandler)
		admin.POST("/withdrawals/:uid/:requestId/approve", h.ApproveWithdrawalHandler)
	}
	return r
}
