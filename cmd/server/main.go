package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/halipro/api/internal/auth"
	"github.com/halipro/api/internal/config"
	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/excel"
	"github.com/halipro/api/internal/handler"
	"github.com/halipro/api/internal/logger"
	"github.com/halipro/api/internal/pdf"
	"github.com/halipro/api/internal/router"
	"github.com/halipro/api/internal/service"
	"github.com/halipro/api/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("create connection pool")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	log.Info().Msg("database ready")

	queries := database.New(pool)
	tokens := auth.NewManager(cfg.Auth.JWTSecret)
	orderService := service.NewOrderService(pool, queries)

	hub := ws.NewHub(log)
	go hub.Run()

	receipts := pdf.NewGenerator("HaliPro")
	workbooks := excel.NewGenerator()

	srv := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router.New(router.Deps{
			Tokens:         tokens,
			Hub:            hub,
			Auth:           handler.NewAuthHandler(queries, tokens, log),
			Users:          handler.NewUserHandler(queries, log),
			Orders:         handler.NewOrderHandler(queries, orderService, hub, receipts, log),
			Customers:      handler.NewCustomerHandler(queries, log),
			Products:       handler.NewProductHandler(queries, log),
			Drivers:        handler.NewDriverHandler(queries, log),
			Regions:        handler.NewRegionHandler(queries, log),
			Templates:      handler.NewTemplateHandler(queries, log),
			Ledger:         handler.NewLedgerHandler(queries, log),
			Reports:        handler.NewReportHandler(queries, workbooks, log),
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
