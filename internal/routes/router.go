package routes

import (
	"net/http"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/delivery/http/handler"
	"product-catalog/internal/logger"
	"product-catalog/internal/middleware"
	"product-catalog/internal/usecase/product"
	"product-catalog/internal/usecase/user"
	"product-catalog/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	MsgRouteNotFound    = "Route not found"
	MsgMethodNotAllowed = "Method not allowed"
)

// Services are the dependencies the routes dispatch to.
type Services struct {
	Users    *user.Service
	Products *product.Service
	Verifier middleware.Verifier
	// DB backs /health; nil when running without a database.
	DB handler.HealthChecker
}

// SetupRoutes builds the engine. Background work of the middleware stops
// when done is closed.
func SetupRoutes(cfg *config.Config, svc Services, done <-chan struct{}) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	generalLimiter := middleware.NewRateLimiter(rateOrInf(cfg.RateLimit.GeneralRPS), cfg.RateLimit.GeneralBurst)
	authLimiter := middleware.PerMinute(cfg.RateLimit.AuthPerMinute)
	generalLimiter.StartCleanup(10*time.Minute, done)
	authLimiter.StartCleanup(10*time.Minute, done)

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(generalLimiter))

	router.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, MsgRouteNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})

	statusHandler := handler.NewStatusHandler(svc.DB)
	userHandler := handler.NewUserHandler(svc.Users)
	productHandler := handler.NewProductHandler(svc.Products)

	router.GET("/health", statusHandler.Health)

	v1 := router.Group("/v1")
	{
		v1.GET("/status", statusHandler.Status)
		userHandler.RegisterRoutes(v1, middleware.RateLimitMiddleware(authLimiter))

		v1.POST("/refresh-token",
			middleware.RateLimitMiddleware(authLimiter),
			middleware.AuthMiddleware(svc.Verifier, middleware.AllowExpired()),
			userHandler.RefreshToken,
		)

		protected := v1.Group("", middleware.AuthMiddleware(svc.Verifier))
		{
			userHandler.RegisterProtectedRoutes(protected)
			productHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router
}

func rateOrInf(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}
