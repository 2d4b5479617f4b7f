// Package routes wires every handler into the gin engine behind the
// shared middleware chain, grouped under the configured API prefix.
package routes

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/moneyquest/backend/internal/api/handlers"
	"github.com/moneyquest/backend/internal/api/middleware"
	"github.com/moneyquest/backend/internal/config"
	"github.com/moneyquest/backend/pkg/logger"
)

// Handlers bundles every handler group routes.Setup wires into the
// engine. Constructed in cmd/server/main.go once every service is built.
type Handlers struct {
	Auth        *handlers.AuthHandlers
	Profile     *handlers.ProfileHandlers
	Wallet      *handlers.WalletHandlers
	Shop        *handlers.ShopHandlers
	Mission     *handlers.MissionHandlers
	Tamagotchi  *handlers.TamagotchiHandlers
	Goal        *handlers.GoalHandlers
	Adventure   *handlers.AdventureHandlers
}

// defaultRateLimitPerMin bounds per-IP request rate; no configuration
// option overrides it.
const defaultRateLimitPerMin = 120

// Setup builds the gin engine: global middleware in the fixed order the
// security posture depends on, then the public and authenticated route
// groups.
func Setup(cfg *config.Config, log *logger.Logger, h *Handlers) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.InputValidation())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(splitOrigins(cfg.CORS.Origin)))
	router.Use(middleware.RateLimit(defaultRateLimitPerMin))
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	prefix := cfg.Server.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	api := router.Group(prefix)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimit(20))
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	api.GET("/shop/characters", h.Shop.Characters)
	api.GET("/shop/foods", h.Shop.Foods)

	protected := api.Group("")
	protected.Use(middleware.Authentication(cfg, log))
	{
		protected.POST("/profile", h.Profile.Create)
		protected.GET("/profile", h.Profile.Get)
		protected.GET("/characters/starter", h.Shop.StarterCharacters)
		protected.POST("/characters/choose", h.Profile.ChooseStarter)

		protected.GET("/wallet", h.Wallet.Balance)
		protected.GET("/wallet/transactions", h.Wallet.History)

		protected.GET("/shop/inventory", h.Shop.Inventory)
		protected.POST("/shop/buy", h.Shop.Purchase)

		protected.GET("/missions/today", h.Mission.Today)
		protected.POST("/missions/log-expense", h.Mission.LogExpense)
		protected.POST("/missions/log-saving", h.Mission.LogSaving)
		protected.GET("/missions/expenses", h.Mission.Expenses)
		protected.GET("/missions/savings", h.Mission.Savings)

		protected.GET("/tamagotchi", h.Tamagotchi.Get)
		protected.POST("/tamagotchi/feed", h.Tamagotchi.Feed)
		protected.PATCH("/tamagotchi/name", h.Tamagotchi.Rename)

		protected.POST("/goals", h.Goal.Create)
		protected.GET("/goals", h.Goal.List)
		protected.GET("/goals/active", h.Goal.Active)
		protected.GET("/goals/completed", h.Goal.Completed)
		protected.POST("/goals/:id/progress", h.Goal.AddProgress)
		protected.DELETE("/goals/:id", h.Goal.Delete)

		protected.POST("/adventures", h.Adventure.Generate)
		protected.GET("/adventures", h.Adventure.History)
		protected.GET("/adventures/:id", h.Adventure.Get)
		protected.POST("/adventures/:id/choice", h.Adventure.SubmitChoice)
	}

	return router
}

// splitOrigins turns CORS.Origin's comma-separated string into the slice
// middleware.CORS expects.
func splitOrigins(origin string) []string {
	if origin == "" {
		return nil
	}
	parts := strings.Split(origin, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
