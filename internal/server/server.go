// Package server is the composition root: it opens the database, builds the
// services and handlers, mounts the routes and runs the HTTP server with
// graceful shutdown.
//
//	config → sqlite.DB → services → handlers → chi router
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/phrasebook/internal/auth"
	"github.com/sakif/phrasebook/internal/config"
	"github.com/sakif/phrasebook/internal/handler"
	"github.com/sakif/phrasebook/internal/middleware"
	sqliteRepo "github.com/sakif/phrasebook/internal/repository/sqlite"
	"github.com/sakif/phrasebook/internal/service"
)

// Server owns the router and the database connection, which it closes on
// shutdown.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	services *Services
}

// Services is the service layer built on one database. The CLI commands use
// it without starting HTTP.
type Services struct {
	Tokens     *auth.TokenService
	Auth       *service.AuthService
	Dictionary *service.DictionaryService
	Settings   *service.SettingService
	Seeder     *service.Seeder
}

// NewServices wires every service to db. cfg.Auth.JWTSecret must already be set.
func NewServices(db *sqliteRepo.DB, cfg *config.Config, passwords *auth.PasswordService, logger *slog.Logger) (*Services, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	authSvc := service.NewAuthService(db, tokens, passwords, logger)
	dictSvc := service.NewDictionaryService(db, logger)

	return &Services{
		Tokens:     tokens,
		Auth:       authSvc,
		Dictionary: dictSvc,
		Settings:   service.NewSettingService(db, logger),
		Seeder:     service.NewSeeder(authSvc, dictSvc, logger),
	}, nil
}

// New opens the database, seeds it on first run and sets up the routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	return newServer(cfg, logger, auth.NewPasswordService())
}

func newServer(cfg *config.Config, logger *slog.Logger, passwords *auth.PasswordService) (*Server, error) {
	generated, err := cfg.EnsureJWTSecret()
	if err != nil {
		return nil, err
	}
	if generated {
		logger.Warn("JWT_SECRET not set; using a random secret, sessions end on restart")
	}

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	services, err := NewServices(db, cfg, passwords, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	if _, err := services.Seeder.Run(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		services: services,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and routes.
//
// GET    /                          → public dictionary page (HTML)
// GET    /static/*                  → CSS and images
// GET    /healthz                   → database liveness
// POST   /api/login                 → issue session token
// POST   /api/logout                → clear token cookie
// GET    /api/dictionary?q=         → list / search entries
// GET    /api/dictionary/{id}       → one entry
// GET    /api/settings              → all settings
// GET    /api/settings/{key}        → one setting
//
// Token required:
// GET    /api/me                    → current user
// POST   /api/change-password       → change own password
// POST   /api/dictionary            → create entry
// PUT    /api/dictionary/{id}       → partial update
// DELETE /api/dictionary/{id}       → delete entry
// POST   /api/settings              → upsert setting
//
// Middleware runs in the order added: RequestID, RealIP, Logger, Recoverer.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// GET /static/css/style.css → {StaticDir}/css/style.css
	fileServer := http.FileServer(http.Dir(s.config.Server.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	pageHandler, err := handler.NewPageHandler(s.config.Server.TemplateDir, s.services.Dictionary, s.services.Settings, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pageHandler.HandleHome)
	s.router.Get("/healthz", s.handleHealth)

	authHandler := handler.NewAuthHandler(s.services.Auth, s.services.Tokens, s.config.Server.SecureCookies, s.logger)
	dictHandler := handler.NewDictionaryHandler(s.services.Dictionary, s.logger)
	settingsHandler := handler.NewSettingsHandler(s.services.Settings, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Get("/dictionary", dictHandler.HandleList)
		r.Get("/dictionary/{id}", dictHandler.HandleGetByID)
		r.Get("/settings", settingsHandler.HandleList)
		r.Get("/settings/{key}", settingsHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.services.Tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Post("/change-password", authHandler.HandleChangePassword)
			r.Post("/dictionary", dictHandler.HandleCreate)
			r.Put("/dictionary/{id}", dictHandler.HandleUpdate)
			r.Delete("/dictionary/{id}", dictHandler.HandleDelete)
			r.Post("/settings", settingsHandler.HandleSet)
		})
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}` + "\n"))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// Start serves until SIGINT/SIGTERM, then gives in-flight requests 30
// seconds to finish and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port)),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
