package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ChaliniM/Healthcare/internal/auth"
	"github.com/ChaliniM/Healthcare/internal/records"
	"github.com/ChaliniM/Healthcare/internal/report"
	"github.com/ChaliniM/Healthcare/pkg/config"
	"github.com/ChaliniM/Healthcare/pkg/database"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/monitoring"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// Server wires the storage, services and handlers into one HTTP server
type Server struct {
	config     *config.Config
	logger     *logger.Logger
	db         *database.DB
	httpServer *http.Server
}

// New builds the server: it opens the store, creates the schema, provisions
// the seed principals and mounts every route.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()
	if err := db.CreateSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := seedUsers(ctx, db, &cfg.Auth); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	metrics := monitoring.NewMetricsCollector("clinic-server")

	health := monitoring.NewHealthManager("clinic-server")
	health.Register("database", monitoring.NewDatabaseHealthChecker(db.DB))

	userRepo := auth.NewUserRepository(db, log)
	authService := auth.NewService(&cfg.Auth, log, userRepo, metrics)
	authMiddleware := auth.NewMiddleware(authService, cfg.Auth.CookieName, log)
	authHandlers := auth.NewHandlers(authService, cfg.Auth.CookieName, log)

	recordsRepo := records.NewRepository(db, log, metrics)
	recordsService := records.NewService(recordsRepo, log)
	recordsHandlers := records.NewHandlers(recordsService, log)

	generator := report.NewGenerator(recordsRepo, log, metrics, cfg.Report.LogoPath)
	reportHandlers := report.NewHandlers(generator, log)

	router := mux.NewRouter()

	monitor := monitoring.NewMonitoringMiddleware(metrics, log)
	router.Use(monitor.HTTPMiddleware)

	router.Handle("/health", health.Handler()).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	authHandlers.Register(api)

	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware.RequireAuth)
	recordsHandlers.Register(protected)
	reportHandlers.Register(protected)

	admin := api.NewRoute().Subrouter()
	admin.Use(authMiddleware.RequireAuth)
	admin.Use(authMiddleware.RequireRole(types.RoleAdmin))
	recordsHandlers.RegisterAdmin(admin)

	if cfg.Server.DemoRoutes {
		log.Warn("Demo routes enabled: unauthenticated user provisioning is exposed")
		authHandlers.RegisterDemoRoutes(router)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	return &Server{
		config:     cfg,
		logger:     log,
		db:         db,
		httpServer: httpServer,
	}, nil
}

// seedUsers provisions the first-run principals, with credentials stored in
// the active password mode
func seedUsers(ctx context.Context, db *database.DB, cfg *config.AuthConfig) error {
	passwords := auth.NewPasswordManager(cfg.HashPasswords)

	seeds := []struct {
		username, password string
		role               types.UserRole
	}{
		{"admin", "admin123", types.RoleAdmin},
		{"doctor", "doc123", types.RoleDoctor},
	}

	users := make([]database.SeedUser, 0, len(seeds))
	for _, s := range seeds {
		stored, err := passwords.HashPassword(s.password)
		if err != nil {
			return err
		}
		users = append(users, database.SeedUser{
			Username: s.username,
			Password: stored,
			Role:     string(s.role),
		})
	}

	return db.SeedUsers(ctx, users)
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting clinic server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server and closes the store
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Error("HTTP server shutdown failed")
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.logger.Info("Clinic server stopped")
	return nil
}
