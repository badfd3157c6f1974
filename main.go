package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yadhukrishnapk/backend-invoice/internal/api"
	"github.com/yadhukrishnapk/backend-invoice/internal/config"
	"github.com/yadhukrishnapk/backend-invoice/internal/db"
	"github.com/yadhukrishnapk/backend-invoice/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.Connect(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Disconnect(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	// The unique invoiceNumber index must exist before the first create.
	ctxIdx, cancelIdx := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repository.EnsureIndexes(ctxIdx, mongoDb); err != nil {
		cancelIdx()
		log.Fatalf("Failed to ensure database indexes: %v", err)
	}
	cancelIdx()

	router := api.SetupRouter(cfg, mongoDb)
	srv := &http.Server{
		Addr:    ":" + cfg.ApiPort,
		Handler: router,
	}

	go func() {
		fmt.Printf("API listening on :%s\n", cfg.ApiPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	fmt.Println("Server stopped.")
}
