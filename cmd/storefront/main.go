package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"storefront-engine/internal/cart"
	"storefront-engine/internal/checkout"
	"storefront-engine/internal/client"
	"storefront-engine/internal/config"
	"storefront-engine/internal/httpserver"
	"storefront-engine/internal/session"
	"storefront-engine/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	kv, err := storage.OpenFile(cfg.StateFile, logger)
	if err != nil {
		logger.Fatalf("open state file: %v", err)
	}

	base := client.New(cfg.BackendBaseURL, cfg.RequestTimeout, logger)
	authClient := client.NewAuth(base)
	directoryClient := client.NewDirectory(base)
	catalogClient := client.NewCatalog(base)
	orderClient := client.NewOrders(base)

	cartStore := cart.NewStore(kv, logger, cart.DefaultPromos())
	sessionStore := session.NewStore(kv, authClient, directoryClient, logger)
	orchestrator := checkout.New(cartStore, sessionStore, orderClient, logger).
		WithSuccessWindow(cfg.SuccessWindow)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Cart:     cartStore,
		Session:  sessionStore,
		Checkout: orchestrator,
		Catalog:  catalogClient,
		Orders:   orderClient,
	}, cfg.AllowedOrigins)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting storefront engine on %s (backend %s)", cfg.HTTPAddr, cfg.BackendBaseURL)
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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
