package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/fonyuygita/protrack-backend/internal/auth"
	"github.com/fonyuygita/protrack-backend/internal/config"
	"github.com/fonyuygita/protrack-backend/internal/handler"
	"github.com/fonyuygita/protrack-backend/internal/notifier"
	"github.com/fonyuygita/protrack-backend/internal/repository"
	"github.com/fonyuygita/protrack-backend/internal/service"
	"github.com/fonyuygita/protrack-backend/pkg/logger"
	"github.com/fonyuygita/protrack-backend/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.Server.Env, cfg.Logging.Level)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.GetAccessTokenTTL(), cfg.GetRefreshTokenTTL())
	mailer := notifier.NewSMTPNotifier(cfg.SMTP)
	complianceService := service.NewComplianceService(paymentRepo, userRepo, mailer, cfg)
	paymentService := service.NewPaymentService(paymentRepo, userRepo, cfg)
	authService := service.NewAuthService(userRepo, tokens)
	gate := service.NewAccessGate(paymentRepo, redisClient, cfg.GetGateCacheTTL())

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	paymentHandler := handler.NewPaymentHandler(paymentService, complianceService)
	healthHandler := handler.NewHealthHandler(db, redisClient)
	middleware := handler.NewMiddleware(tokens, userRepo, gate, cfg)

	// Setup routes
	router := setupRoutes(authHandler, paymentHandler, healthHandler, middleware)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	authHandler *handler.AuthHandler,
	paymentHandler *handler.PaymentHandler,
	healthHandler *handler.HealthHandler,
	mw *handler.Middleware,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware, response.LoggingMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Public auth routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST")

	// Authenticated routes: payment status is reachable even when payment
	// is due, so users can see what they owe.
	authed := api.NewRoute().Subrouter()
	authed.Use(mw.Authenticate, mw.RequireApproved)
	authed.HandleFunc("/payments/status", paymentHandler.GetStatus).Methods("GET")

	// Everything else a staff account touches sits behind the payment
	// gate. Project/task/transaction routes mount here.
	gated := api.NewRoute().Subrouter()
	gated.Use(mw.Authenticate, mw.RequireApproved, mw.RequirePayment)
	gated.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Admin routes bypass the payment gate by role.
	admin := api.NewRoute().Subrouter()
	admin.Use(mw.Authenticate, mw.RequireApproved, mw.RequireAdmin)
	admin.HandleFunc("/users/{userId}/approve", authHandler.Approve).Methods("POST")
	admin.HandleFunc("/payments", paymentHandler.CreateRecord).Methods("POST")
	admin.HandleFunc("/payments", paymentHandler.ListRecords).Methods("GET")
	admin.HandleFunc("/payments/run-reminders", paymentHandler.RunReminders).Methods("POST")
	admin.HandleFunc("/payments/{recordId}", paymentHandler.GetRecord).Methods("GET")
	admin.HandleFunc("/payments/{recordId}", paymentHandler.UpdateRecord).Methods("PATCH")
	admin.HandleFunc("/payments/{recordId}", paymentHandler.DeleteRecord).Methods("DELETE")

	return router
}
