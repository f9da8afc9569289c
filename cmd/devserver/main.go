package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"onlineshop/internal/config"
	"onlineshop/internal/db"
	"onlineshop/internal/devserver"
	orderrepo "onlineshop/internal/repository/order"
	productrepo "onlineshop/internal/repository/product"
	supplierrepo "onlineshop/internal/repository/supplier"
	userrepo "onlineshop/internal/repository/user"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[devserver] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()

	var pool *pgxpool.Pool
	deps := devserver.Deps{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		ShippingCents: cfg.ShippingCents,
	}

	if cfg.UseMemory {
		logger.Printf("running with in-memory repositories")
		deps.Users = userrepo.NewMemory()
		deps.Products = productrepo.NewMemory()
		deps.Suppliers = supplierrepo.NewMemory()
		deps.Orders = orderrepo.NewMemory()
	} else {
		var err error
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer pool.Close()

		deps.Users = userrepo.NewPostgres(pool, logger)
		deps.Products = productrepo.NewPostgres(pool, logger)
		deps.Suppliers = supplierrepo.NewPostgres(pool, logger)
		deps.Orders = orderrepo.NewPostgres(pool, logger)
	}

	srv := devserver.New(cfg.HTTPAddr, logger, pool, deps)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
