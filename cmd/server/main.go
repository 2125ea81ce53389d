package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/robotutor/internal/api"
	"github.com/rohits-web03/robotutor/internal/api/handlers"
	"github.com/rohits-web03/robotutor/internal/api/services"
	"github.com/rohits-web03/robotutor/internal/assistant"
	"github.com/rohits-web03/robotutor/internal/auth"
	"github.com/rohits-web03/robotutor/internal/config"
	"github.com/rohits-web03/robotutor/internal/repositories"
)

// @title RoboTutor API
// @version 1.0
// @description Backend for the Physical AI & Humanoid Robotics textbook assistant.
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repositories.Connect(cfg.DBURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	store := repositories.NewStore(db)

	sessions := auth.NewSessionManager(store, auth.BcryptHasher{}, cfg.SessionTTL)

	gemini, err := assistant.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer gemini.Close()

	qdrant, err := assistant.NewQdrantSearcher(cfg.Qdrant)
	if err != nil {
		log.Fatal("Failed to create Qdrant client:", err)
	}
	defer qdrant.Close()

	gateway := assistant.NewGateway(gemini, qdrant, gemini, store, assistant.Options{
		TopK:               cfg.TopK,
		Timeout:            cfg.ProviderTimeout,
		SupportedLanguages: cfg.SupportedLanguages,
	})

	authHandler := &handlers.AuthHandler{
		Sessions:    sessions,
		Store:       store,
		FrontendURL: cfg.FrontendURL,
		Environment: cfg.Environment,
		SessionTTL:  cfg.SessionTTL,
	}
	if cfg.Google.ClientID != "" {
		authHandler.Google = services.NewGoogleOAuth(cfg.Google)
	}
	if cfg.R2.AccountID != "" {
		authHandler.Avatars = repositories.NewAvatarStorage(cfg.R2)
	}

	assistantHandler := &handlers.AssistantHandler{
		Gateway: gateway,
		Store:   store,
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(cfg, sessions, authHandler, assistantHandler),
		// Generation calls can be slow; the write timeout has to cover them.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting RoboTutor server on port: %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Expired-session sweeper. Housekeeping only: session validity is
	// checked at read time regardless.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n, err := sessions.SweepExpired(ctx); err != nil {
					log.Printf("Session sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("Session sweep removed %d expired sessions", n)
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server exiting gracefully")
}
