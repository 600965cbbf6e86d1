package http

import (
	"database/sql"
	"time"

	"wallethunter/internal/config"
	"wallethunter/internal/http/handlers"
	"wallethunter/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the API surface onto the engine. The handle to the
// shared store is passed down explicitly; nothing here keeps global state.
func RegisterRoutes(r *gin.Engine, db *sql.DB, cfg *config.Config) {
	h := handlers.NewHandler(db)

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", h.Health)

	limiter := middleware.NewRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	rateLimit := limiter.Limit(cfg.APIRateLimit, time.Duration(cfg.APIRateWindow)*time.Second)

	r.POST("/ping", rateLimit, h.Ping)
	r.POST("/event", rateLimit, h.Event)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.AdminAPIKey))
	{
		admin.GET("/users", h.AdminUsers)
		admin.GET("/users/:id", h.AdminUser)
		admin.PATCH("/users/:id", h.AdminUpdate)
	}
}
