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

	"storefront-engine/internal/backend/db"
	"storefront-engine/internal/backend/httpserver"
	"storefront-engine/internal/backend/repository/adherent"
	"storefront-engine/internal/backend/repository/commande"
	"storefront-engine/internal/backend/repository/produit"
	"storefront-engine/internal/config"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[devserver] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	srv := httpserver.New(cfg.BackendHTTPAddr, logger, httpserver.Deps{
		Adherents: adherent.NewPostgres(dbpool, logger),
		Produits:  produit.NewPostgres(dbpool, logger),
		Commandes: commande.NewPostgres(dbpool, logger),
	}, cfg.AllowedOrigins)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting dev backend on %s", cfg.BackendHTTPAddr)
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
