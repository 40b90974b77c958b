package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmacare-backend/config"
	"pharmacare-backend/internal/delivery/http/middleware"
	v1 "pharmacare-backend/internal/delivery/http/v1"
	"pharmacare-backend/internal/infrastructure/cache"
	"pharmacare-backend/internal/repository/postgres"
	"pharmacare-backend/internal/usecase"
	"pharmacare-backend/pkg/logger"
	"pharmacare-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL")

	// Repositories
	userRepo := postgres.NewUserRepository(pgxPool)
	medicineRepo := postgres.NewMedicineRepository(pgxPool)
	orderRepo := postgres.NewOrderRepository(pgxPool)
	billRepo := postgres.NewBillRepository(pgxPool)
	txManager := postgres.NewTransactionManager(pgxPool)

	// In-memory cache: default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	mux := http.NewServeMux()

	// --- Modules Initialization ---

	// Auth Module
	authUC := usecase.NewAuthUsecase(userRepo, cfg.AccessTokenExpiry)
	authHandler := v1.NewAuthHandler(authUC)

	// Medicine Module (inventory)
	medicineUC := usecase.NewMedicineUsecase(medicineRepo)
	medicineHandler := v1.NewMedicineHandler(medicineUC)

	// Transactions Module (derived reporting view)
	transactionsUC := usecase.NewTransactionsUsecase(billRepo, orderRepo, memCache, cfg.CacheTransactionsTTL)
	transactionsHandler := v1.NewTransactionsHandler(transactionsUC)

	// Supplier Order Module (placement + reconciliation + refunds)
	orderUC := usecase.NewOrderUsecase(orderRepo, medicineRepo, txManager, cfg.MaxOrderLineQty)
	orderHandler := v1.NewOrderHandler(orderUC, transactionsUC)

	// Billing Module
	billUC := usecase.NewBillUsecase(billRepo, medicineRepo, txManager)
	billHandler := v1.NewBillHandler(billUC, transactionsUC)

	protected := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(h)
	}

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/v1/auth/me", protected(authHandler.Me))
	mux.Handle("PUT /api/v1/user/profile", protected(authHandler.UpdateProfile))

	// Medicines
	mux.Handle("GET /api/v1/medicines", protected(medicineHandler.List))
	mux.Handle("POST /api/v1/medicines", protected(medicineHandler.Add))
	mux.Handle("PUT /api/v1/medicines/{id}", protected(medicineHandler.Update))

	// Supplier Orders
	mux.Handle("POST /api/v1/orders", protected(orderHandler.Place))
	mux.Handle("GET /api/v1/orders", protected(orderHandler.List))
	mux.Handle("GET /api/v1/orders/actionable", protected(orderHandler.ListActionable))
	mux.Handle("GET /api/v1/orders/{id}", protected(orderHandler.Get))

	// Reconciliation actions
	mux.Handle("POST /api/v1/orders/{id}/accept", protected(orderHandler.AcceptAll))
	mux.Handle("POST /api/v1/orders/{id}/cancel", protected(orderHandler.CancelAll))
	mux.Handle("POST /api/v1/orders/{id}/partial-accept", protected(orderHandler.PartialAccept))
	mux.Handle("POST /api/v1/orders/{id}/partial-cancel", protected(orderHandler.PartialCancel))
	mux.Handle("POST /api/v1/orders/{id}/accept-rest", protected(orderHandler.AcceptRest))
	mux.Handle("POST /api/v1/orders/{id}/cancel-rest", protected(orderHandler.CancelRest))

	// Refund flags
	mux.Handle("POST /api/v1/orders/{id}/refund", protected(orderHandler.MarkRefund))
	mux.Handle("POST /api/v1/orders/{id}/partial-refund", protected(orderHandler.MarkPartialRefund))
	mux.Handle("POST /api/v1/orders/{id}/full-refund", protected(orderHandler.MarkFullRefund))

	// Billing
	mux.Handle("POST /api/v1/bills", protected(billHandler.Make))
	mux.Handle("GET /api/v1/bills", protected(billHandler.List))
	mux.Handle("GET /api/v1/bills/{id}", protected(billHandler.Get))

	// Transactions
	mux.Handle("GET /api/v1/transactions", protected(transactionsHandler.History))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler)

	addr := fmt.Sprintf(":%s", cfg.Port)

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitPerSecond),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// CORS, Request Logger, Rate Limit, Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited")
}
