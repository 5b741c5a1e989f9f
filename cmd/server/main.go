package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"playerauction/internal/auction"
	"playerauction/internal/config"
	cronrunner "playerauction/internal/cron"
	"playerauction/internal/db"
	"playerauction/internal/evaluation"
	"playerauction/internal/handler"
	"playerauction/internal/logger"
	"playerauction/internal/notify"
	gormrepository "playerauction/internal/repository/gorm"
	"playerauction/internal/service"
)

func main() {
	cfgPath := os.Getenv("PA_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PA_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	teamPurse := decimal.NewFromFloat(cfg.Auction.TeamPurse).Round(2)

	seeder := &service.Seeder{
		Repo:       store,
		Logger:     logger,
		Franchises: cfg.Auction.Franchises,
		TeamPurse:  teamPurse,
	}
	if err := seeder.EnsureTeams(context.Background()); err != nil {
		logger.Fatal("team seeding failed", zap.Error(err))
	}

	ledger := &auction.Ledger{Repo: store}
	queue := &auction.Queue{Repo: store}
	machine := &auction.Machine{
		Repo:   store,
		Queue:  queue,
		Ledger: ledger,
		Logger: logger,
		Config: auction.Config{
			Franchises:  cfg.Auction.Franchises,
			TeamPurse:   teamPurse,
			StartWindow: cfg.Auction.StartWindow,
			BidWindow:   cfg.Auction.BidWindow,
		},
	}
	engine := &evaluation.Engine{
		Repo:       store,
		Logger:     logger,
		Config:     cfg.Evaluation,
		Franchises: cfg.Auction.Franchises,
		TeamPurse:  teamPurse,
	}
	registrar := &service.Registrar{
		Repo:        store,
		Logger:      logger,
		Franchises:  cfg.Auction.Franchises,
		DeviceLimit: cfg.Auction.DeviceLimit,
	}
	importer := &service.Importer{Repo: store, Logger: logger}
	hub := notify.NewHub(logger)

	// Seed the catalog from the configured CSV on first boot; a populated
	// catalog is never touched.
	if n, err := store.CountPlayers(context.Background()); err != nil {
		logger.Warn("player count failed", zap.Error(err))
	} else if n == 0 && cfg.Import.CSVPath != "" {
		result, err := importer.ImportCSV(context.Background(), cfg.Import.CSVPath)
		if err != nil {
			logger.Warn("initial player import skipped", zap.Error(err))
		} else {
			logger.Info("initial player import complete",
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped),
			)
		}
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	auctionHandler := &handler.AuctionHandler{
		Repo:    store,
		Machine: machine,
		Engine:  engine,
		Hub:     hub,
		Logger:  logger,
	}
	auctionHandler.Register(router)
	deviceHandler := &handler.DeviceHandler{Repo: store, Registrar: registrar}
	deviceHandler.Register(router)
	playerHandler := &handler.PlayerHandler{
		Repo:     store,
		Importer: importer,
		CSVPath:  cfg.Import.CSVPath,
		Logger:   logger,
	}
	playerHandler.Register(router)
	streamHandler := &handler.StreamHandler{Hub: hub}
	streamHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		staleAfter := cfg.Cron.DeviceStaleAfter
		_, err = cronRunner.Add(cfg.Cron.DeviceSweep, func(ctx context.Context) {
			cutoff := time.Now().UTC().Add(-staleAfter)
			n, err := store.DeactivateStaleDevices(ctx, cutoff)
			if err != nil {
				logger.Warn("device sweep failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("deactivated stale devices", zap.Int64("count", n))
			}
		})
		if err != nil {
			logger.Warn("cron register device sweep failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
