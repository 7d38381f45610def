package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/crucial707/social-auth/internal/auth"
	"github.com/crucial707/social-auth/internal/config"
	"github.com/crucial707/social-auth/internal/handlers"
	"github.com/crucial707/social-auth/internal/middleware"
	"github.com/crucial707/social-auth/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter wires the store, token issuer and handlers for cfg onto a chi router.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	users := repo.NewUserRepo(database)
	events := repo.NewAuthEventRepo(database)
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL())

	authHandler := &handlers.AuthHandler{
		Users:  users,
		Tokens: tokens,
		Cookies: auth.SessionCookies{
			Secure: cfg.IsProduction(),
			MaxAge: tokens.TTL(),
		},
		Events: events,
	}
	eventsHandler := &handlers.EventsHandler{Events: events}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", readyHandler(database))
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.AuthRateLimiter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.With(limiter.Middleware).Post("/signup", authHandler.Signup)
		r.With(limiter.Middleware).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Protect(tokens, users))
		r.Get("/me", authHandler.Me)
		r.Get("/me/events", eventsHandler.ListMine)
	})

	return r
}

func readyHandler(database *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.PingContext(ctx); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	}
}
