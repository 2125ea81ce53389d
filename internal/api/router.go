package api

import (
	"fmt"
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/rohits-web03/robotutor/docs"

	"github.com/rohits-web03/robotutor/internal/api/handlers"
	"github.com/rohits-web03/robotutor/internal/api/middleware"
	"github.com/rohits-web03/robotutor/internal/auth"
	"github.com/rohits-web03/robotutor/internal/config"
	"github.com/rs/cors"
)

func SetupRouter(cfg config.Config, sessions *auth.SessionManager, authHandler *handlers.AuthHandler, assistantHandler *handlers.AssistantHandler) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.CorsConfig)
	protect := middleware.Auth(sessions)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("POST /signup", authHandler.Signup)
	authMux.HandleFunc("POST /signin", authHandler.Signin)
	authMux.HandleFunc("POST /signout", authHandler.Signout)
	authMux.HandleFunc("GET /google/login", authHandler.GoogleLogin)
	authMux.HandleFunc("GET /google/callback", authHandler.GoogleCallback)

	// ---------- PROTECTED ROUTES ----------
	authMux.Handle("GET /me", protect(http.HandlerFunc(authHandler.Me)))
	authMux.Handle("DELETE /me", protect(http.HandlerFunc(authHandler.DeleteMe)))
	authMux.Handle("PUT /profile", protect(http.HandlerFunc(authHandler.UpdateProfile)))
	authMux.Handle("POST /avatar/presign", protect(http.HandlerFunc(authHandler.PresignAvatar)))
	authMux.Handle("POST /avatar/complete", protect(http.HandlerFunc(authHandler.CompleteAvatar)))

	mainMux.Handle("/api/auth/",
		http.StripPrefix("/api/auth", authMux),
	)

	assistantMux := http.NewServeMux()
	assistantMux.HandleFunc("POST /ask", assistantHandler.Ask)
	assistantMux.HandleFunc("GET /chat/history", assistantHandler.History)
	assistantMux.HandleFunc("POST /personalize", assistantHandler.Personalize)
	assistantMux.HandleFunc("POST /translate", assistantHandler.Translate)

	mainMux.Handle("/api/",
		http.StripPrefix("/api", protect(assistantMux)),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
