package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Florianperidy/crashledger/internal/config"
	"github.com/Florianperidy/crashledger/internal/handler"
	"github.com/Florianperidy/crashledger/internal/market"
	"github.com/Florianperidy/crashledger/internal/service"
	"github.com/Florianperidy/crashledger/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Instantiate stores: in-memory by default, Postgres when
	// DATABASE_URL is set.
	var (
		users        store.UserStore
		portfolios   store.PortfolioStore
		transactions store.TransactionStore
	)
	if cfg.DatabaseURL != "" {
		pg, err := store.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pg.Close()
		users = pg
		portfolios = store.PostgresPortfolioStore{Postgres: pg}
		transactions = pg
		logger.Info("using postgres stores")
	} else {
		users = store.NewMemoryUserStore()
		portfolios = store.NewMemoryPortfolioStore()
		transactions = store.NewMemoryTransactionStore()
		logger.Info("using in-memory stores")
	}

	// Market: drifting simulator plus the static valuation table.
	sim := market.NewSimulator(market.InitialPrices, nil, nil)
	priceTable := market.DefaultPriceTable()

	// Services.
	accountSvc := service.NewAccountService(users, portfolios, transactions, []byte(cfg.JWTSecret), cfg.TokenTTL, nil)
	faults := service.NewRandomFaultRoller(cfg.FaultProbability, nil)
	orderSvc := service.NewOrderService(portfolios, transactions, priceTable, faults, nil)
	rewardSvc := service.NewRewardService(portfolios, transactions, nil)

	// Price stream: hub fed by a fixed-cadence ticker.
	hub := handler.NewPriceHub(logger)
	ticker := market.NewTicker(cfg.StreamInterval, sim, hub)

	// Router.
	router := handler.NewRouter(accountSvc, orderSvc, rewardSvc, sim, portfolios, transactions, hub, logger)

	// Start ticker goroutine with cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticker.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops ticker).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
