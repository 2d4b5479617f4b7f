// Command server boots the MoneyQuest backend: config, database, every
// domain service, the AI adventure client, the cron sweep, and the gin
// HTTP server, with a graceful shutdown on SIGINT/SIGTERM.
//
// @title MoneyQuest API
// @version 1.0
// @description Financial-literacy game backend: wallet, shop, missions,
// @description tamagotchi, goals, and AI adventures.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/moneyquest/backend/internal/aiclient"
	"github.com/moneyquest/backend/internal/api/handlers"
	"github.com/moneyquest/backend/internal/api/routes"
	"github.com/moneyquest/backend/internal/config"
	"github.com/moneyquest/backend/internal/repository"
	"github.com/moneyquest/backend/internal/service/adventure"
	"github.com/moneyquest/backend/internal/service/goal"
	"github.com/moneyquest/backend/internal/service/mission"
	"github.com/moneyquest/backend/internal/service/profile"
	"github.com/moneyquest/backend/internal/service/shop"
	"github.com/moneyquest/backend/internal/service/tamagotchi"
	"github.com/moneyquest/backend/internal/service/wallet"
	"github.com/moneyquest/backend/internal/worker/adventuresweep"
	"github.com/moneyquest/backend/pkg/graceful"
	"github.com/moneyquest/backend/pkg/logger"
	"github.com/moneyquest/backend/pkg/ratelimit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	if err := repository.RunMigrations(cfg.Database.URL); err != nil {
		log.Error("failed to run migrations", "error", err)
		panic(err)
	}

	db, err := repository.NewConnection(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic(err)
	}

	var loginAttempts *ratelimit.LoginAttemptTracker
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	zapLog, _ := zap.NewProduction()
	loginAttempts = ratelimit.NewLoginAttemptTracker(redisClient, zapLog)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	tamagotchiRepo := repository.NewTamagotchiRepository(db)
	missionRepo := repository.NewMissionRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	adventureRepo := repository.NewAdventureRepository(db)

	// Services, wired in dependency order: the wallet ledger underlies
	// every engine that moves coins.
	walletSvc := wallet.New(db, walletRepo)
	shopSvc := shop.New(db, catalogRepo, inventoryRepo, walletSvc)
	missionSvc := mission.New(db, missionRepo, catalogRepo, walletSvc)
	goalSvc := goal.New(db, goalRepo, walletSvc)
	tamagotchiSvc := tamagotchi.New(db, tamagotchiRepo, catalogRepo, inventoryRepo, shopSvc, missionSvc)
	profileSvc := profile.New(db, profileRepo, catalogRepo, tamagotchiRepo)

	aiClient := aiclient.New(aiclient.FromAppConfig(cfg.AI), zapLog)
	adventureSvc := adventure.New(db, adventureRepo, profileRepo, goalRepo, aiClient)

	// Handlers
	h := &routes.Handlers{
		Auth:       handlers.NewAuthHandlers(userRepo, cfg, log, loginAttempts),
		Profile:    handlers.NewProfileHandlers(profileSvc),
		Wallet:     handlers.NewWalletHandlers(walletSvc, profileSvc),
		Shop:       handlers.NewShopHandlers(shopSvc),
		Mission:    handlers.NewMissionHandlers(missionSvc),
		Tamagotchi: handlers.NewTamagotchiHandlers(tamagotchiSvc),
		Goal:       handlers.NewGoalHandlers(goalSvc),
		Adventure:  handlers.NewAdventureHandlers(adventureSvc),
	}

	router := routes.Setup(cfg, log, h)

	sweep := adventuresweep.New(adventureRepo, log)
	if err := sweep.Start("@hourly"); err != nil {
		log.Warn("failed to start adventure sweep worker", "error", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
		}
	}()

	shutdown := graceful.NewShutdownManager(srv, sqlDB(db), log)
	shutdown.WaitForShutdown()
	sweep.Stop()
}

func sqlDB(db interface{ DB() *sql.DB }) *sql.DB {
	return db.DB()
}
