package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/pickup-checkout/internal/api"
	"github.com/nikolayk812/pickup-checkout/internal/catalog"
	"github.com/nikolayk812/pickup-checkout/internal/config"
	"github.com/nikolayk812/pickup-checkout/internal/metrics"
	"github.com/nikolayk812/pickup-checkout/internal/migrations"
	"github.com/nikolayk812/pickup-checkout/internal/notify"
	"github.com/nikolayk812/pickup-checkout/internal/payment"
	"github.com/nikolayk812/pickup-checkout/internal/port"
	"github.com/nikolayk812/pickup-checkout/internal/repository"
	"github.com/nikolayk812/pickup-checkout/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("checkoutd stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.Up(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	productRepo := repository.NewProduct(pool)
	var products port.Catalog = productRepo
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		products = catalog.New(productRepo, rdb, cfg.CatalogTTL, logger)
	}

	var notifier port.Notifier = notify.NewLogNotifier(logger)
	if cfg.KafkaBrokers != "" {
		writer := notify.NewWriter(cfg.KafkaBrokers, notify.OrdersTopic)
		defer writer.Close()
		notifier = notify.NewKafkaNotifier(writer)
	}

	slotRepo := repository.NewSlot(pool)
	cartRepo := repository.NewCart(pool)
	orderRepo := repository.NewOrder(pool)

	ledger := service.NewSlotLedger(slotRepo, cfg.PickupDays, cfg.Location, m, logger)
	carts := service.NewCartService(cartRepo, products, cfg.Currency, m, logger)
	checkout := service.NewCheckoutService(
		ledger,
		cartRepo,
		carts,
		repository.NewCheckoutStore(pool),
		payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentTimeout, logger),
		notifier,
		m,
		logger,
		service.WithPaymentTimeout(cfg.PaymentTimeout),
	)
	sweeper := service.NewReservationSweeper(ledger, slotRepo, cartRepo, cfg.ReservationTTL, cfg.SweepInterval, logger)

	handler := api.NewHandler(carts, checkout, ledger, orderRepo, m, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      40 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("checkoutd listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		stop()
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}

	wg.Wait()

	return err
}
