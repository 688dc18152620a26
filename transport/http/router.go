package http

import (
	"context"
	"net/http"

	"github.com/fidena/fidena/internal/ratelimit"
	"github.com/fidena/fidena/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps groups what the router needs to serve the API
type Deps struct {
	Auth         *service.AuthService
	Registration *service.RegistrationService
	Users        *service.UserService
	Finance      *service.FinanceService

	Gate      GateConfig
	Cookies   CookieConfig
	RateLimit *ratelimit.Config

	// Ping reports backing store health for /healthz. Optional.
	Ping   func(ctx context.Context) error
	Logger *zap.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(deps Deps) (*gin.Engine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gate, err := NewGate(deps.Auth, deps.Gate, logger)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), LoggingMiddleware(logger), MetricsMiddleware(), gate.Middleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if deps.Ping != nil {
			if err := deps.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	authHandlers := NewAuthHandlers(deps.Auth, deps.Registration, deps.Cookies, logger)
	userHandlers := NewUserHandlers(deps.Users, logger)
	financeHandlers := NewFinanceHandlers(deps.Finance, logger)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.GET("/register", authHandlers.Challenge)
		auth.POST("/register", RateLimit(ratelimit.New(deps.RateLimit)), authHandlers.Register)
		auth.GET("/logout", authHandlers.Logout)
		auth.POST("/logout", authHandlers.Logout)
	}

	api.GET("/user", userHandlers.Me)
	api.POST("/user/complete-registration", userHandlers.CompleteRegistration)

	api.GET("/init", financeHandlers.Init)
	api.GET("/currencies", financeHandlers.Currencies)

	api.GET("/bank-accounts", financeHandlers.ListBankAccounts)
	api.POST("/bank-accounts", financeHandlers.CreateBankAccount)
	api.DELETE("/bank-accounts/:id", financeHandlers.DeleteBankAccount)

	api.GET("/labels", financeHandlers.ListLabels)
	api.POST("/labels", financeHandlers.CreateLabel)

	api.GET("/merchants", financeHandlers.ListMerchants)
	api.POST("/merchants", financeHandlers.CreateMerchant)
	api.GET("/merchants/presets", financeHandlers.PresetMerchants)

	return router, nil
}
