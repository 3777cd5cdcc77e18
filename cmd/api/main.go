package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/ryanpratama14/hiddengym-api/internal/cache"
	"github.com/ryanpratama14/hiddengym-api/internal/config"
	"github.com/ryanpratama14/hiddengym-api/internal/database"
	"github.com/ryanpratama14/hiddengym-api/internal/handlers"
	"github.com/ryanpratama14/hiddengym-api/internal/middleware"
	"github.com/ryanpratama14/hiddengym-api/internal/pricing"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := newLogger(cfg.App.LogLevel)
	slog.SetDefault(log)

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		log.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	engine := pricing.NewEngine(cfg.Pricing.StudentAgeMax)
	builder := pricing.NewBuilder(engine)

	authHandler := handlers.NewAuthHandler(db, auth, log)
	visitorHandler := handlers.NewVisitorHandler(db, log)
	packageHandler := handlers.NewPackageHandler(db, log)
	promoHandler := handlers.NewPromoCodeHandler(db, db, cfg.Pricing.StudentAgeMax, log)
	txnHandler := handlers.NewTransactionHandler(builder, db, db, db, db, db, log)

	api := http.NewServeMux()
	api.HandleFunc("/api/v1/transactions", txnHandler.Transactions)
	api.HandleFunc("/api/v1/transactions/", txnHandler.TransactionByID)
	api.HandleFunc("/api/v1/packages", packageHandler.Packages)
	api.HandleFunc("/api/v1/packages/", packageHandler.PackageByID)
	api.HandleFunc("/api/v1/promo-codes", promoHandler.Create)
	api.HandleFunc("/api/v1/promo-codes/check", promoHandler.Check)
	api.HandleFunc("/api/v1/visitors", visitorHandler.Visitors)
	api.HandleFunc("/api/v1/visitors/", visitorHandler.VisitorByID)

	// Mutating requests additionally pass through the idempotency replay
	// layer; reads only get rate limiting.
	rateLimited := middleware.RateLimiter(redisClient)
	mutating := rateLimited(middleware.Idempotency(redisClient)(api))
	reads := rateLimited(api)
	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promo check is a dry run with a body but no side effects
		if r.Method == http.MethodGet || strings.HasSuffix(r.URL.Path, "/promo-codes/check") {
			reads.ServeHTTP(w, r)
			return
		}
		mutating.ServeHTTP(w, r)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler(db, redisClient))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/login", authHandler.Login)
	mux.Handle("/api/v1/", auth.Middleware(apiHandler))

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
	server := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      h2c.NewHandler(mux, h2s),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("starting server",
			slog.String("addr", server.Addr),
			slog.String("environment", cfg.App.Environment))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", slog.Any("error", err))
	}
	log.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func healthHandler(db *database.DB, redisClient *cache.Redis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "unavailable"
		}
		redisStatus := "ok"
		if err := redisClient.Ping(ctx); err != nil {
			redisStatus = "unavailable"
		}

		status := http.StatusOK
		if dbStatus != "ok" || redisStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(`{"database":"` + dbStatus + `","redis":"` + redisStatus + `"}`))
	}
}
