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

	"tasklist/internals/config"
	"tasklist/internals/handlers/users"
	"tasklist/internals/security"
	"tasklist/internals/server"
	"tasklist/internals/storage"
)

func main() {
	fmt.Println("Starting main...")
	cfg := config.MustLoad()
	fmt.Printf("Config loaded (env: %s)\n", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.New(ctx, cfg.Database.SQLitePath, cfg.Database.MaxOpenConns)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()
	fmt.Println("Database connected, users and tasks tables ready")

	handler := server.NewRouter(store, security.NewBcryptHasher(cfg.Security.BcryptCost), server.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Superuser: users.Superuser{
			Username: cfg.Superuser.Username,
			Password: cfg.Superuser.Password,
		},
	})
	fmt.Println("Router setup complete")

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Println("Server started on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-done
	fmt.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		log.Printf("Failed to gracefully shutdown server: %v", err)
	}
	fmt.Println("Server stopped")
}
