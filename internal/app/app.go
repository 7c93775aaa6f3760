package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/digichit/digichit-server/internal/config"
	"github.com/digichit/digichit-server/internal/handler"
	"github.com/digichit/digichit-server/internal/middleware"
	"github.com/digichit/digichit-server/internal/repository/postgres"
	"github.com/digichit/digichit-server/internal/service"
)

// App holds the application with all its dependencies
type App struct {
	config *config.Config
	db     *pgxpool.Pool
	server *http.Server
	logger *slog.Logger
}

// New creates a new application instance
func New(cfg *config.Config) (*App, error) {
	// Structured JSON logger; also installed as the process default so
	// deeper layers share the same sink
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize connects the database and configures the HTTP server
func (a *App) Initialize(ctx context.Context) error {
	if err := a.connectDB(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	a.setupServer()

	a.logger.Info("Application initialized successfully")
	return nil
}

// connectDB establishes the PostgreSQL connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// setupServer wires repositories, services, handlers and the router
func (a *App) setupServer() {
	// Repository layer
	userRepo := postgres.NewUserRepository(a.db)
	groupRepo := postgres.NewGroupRepository(a.db)

	// Service layer
	authService := service.NewAuthService(
		userRepo,
		a.config.JWT.Secret,
		a.config.JWT.GetExpiration(),
	)
	userService := service.NewUserService(userRepo)
	groupService := service.NewGroupService(groupRepo, userRepo)
	paymentService := service.NewPaymentService(
		a.config.Razorpay.KeyID,
		a.config.Razorpay.KeySecret,
	)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	groupHandler := handler.NewGroupHandler(groupService)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	authMiddleware := middleware.AuthMiddleware(authService)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
				a.logger.Error("Failed to write health check response", "error", err)
			}
		})

		// Public endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/signin", authHandler.Signin)

			// Protected profile endpoints
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)

				r.Get("/me", userHandler.Me)
				r.Get("/profile", userHandler.Me)
				r.Put("/profile", userHandler.UpdateProfile)
				r.Get("/search-users", userHandler.SearchUsers)
			})
		})

		// Group endpoints require a verified caller identity
		r.Route("/group", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Post("/create", groupHandler.CreateGroup)
			r.Post("/request-join/{groupID}", groupHandler.RequestJoin)
			// Deprecated alias; a direct join also creates a pending request
			r.Post("/join/{groupID}", groupHandler.RequestJoin)
			r.Get("/requests/{groupID}", groupHandler.ListRequests)
			r.Post("/requests/{groupID}/{requestID}", groupHandler.RespondRequest)
			r.Get("/my-groups", groupHandler.MyGroups)
			r.Get("/available", groupHandler.AvailableGroups)
			r.Get("/{groupID}", groupHandler.GroupDetails)
		})

		// Payment endpoints
		r.Route("/payment", func(r chi.Router) {
			r.Use(authMiddleware)

			r.Post("/create-order", paymentHandler.CreateOrder)
			r.Post("/verify-payment", paymentHandler.VerifyPayment)
			r.Get("/payment/{paymentID}", paymentHandler.PaymentDetails)
		})
	})

	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// Run starts the HTTP server
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown stops the application gracefully
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
