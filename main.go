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

	"github.com/joho/godotenv"

	"github.com/isdelr/socialfeed-be/internal/api"
	"github.com/isdelr/socialfeed-be/internal/config"
	"github.com/isdelr/socialfeed-be/internal/database"
	"github.com/isdelr/socialfeed-be/internal/logger"
	"github.com/isdelr/socialfeed-be/internal/monitoring"
	"github.com/isdelr/socialfeed-be/internal/services"
	"github.com/isdelr/socialfeed-be/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the media blob store
	store, err := storage.New(cfg.MediaRoot)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db)
	postService := services.NewPostService(db, store, cfg.MediaPolicy(), eventService)

	// Set up and run the background orphan-media sweeper
	sweeper, err := monitoring.NewSweeper(db, store, eventService, cfg.SweepSchedule)
	if err != nil {
		log.Fatalf("Failed to initialize media sweeper: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(userService, postService, eventService, cfg.MediaRoot)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
