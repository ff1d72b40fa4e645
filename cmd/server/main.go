// Command server wires the alumnet authentication backend: tenant directory,
// account lifecycle, identity verifiers, token issuance, and the admin
// console. Business logic lives in the internal service packages; main only
// assembles them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthandler "alumnet/internal/account/handler"
	accountservice "alumnet/internal/account/service"
	userstore "alumnet/internal/account/store/user"
	"alumnet/internal/audit"
	collegehandler "alumnet/internal/college/handler"
	collegeservice "alumnet/internal/college/service"
	collegestore "alumnet/internal/college/store"
	"alumnet/internal/identity"
	"alumnet/internal/identity/google"
	"alumnet/internal/identity/linkedin"
	jwttoken "alumnet/internal/jwt_token"
	"alumnet/internal/platform/config"
	"alumnet/internal/platform/httpserver"
	"alumnet/internal/platform/logger"
	"alumnet/internal/platform/metrics"
	"alumnet/internal/platform/middleware"
	platformredis "alumnet/internal/platform/redis"
	"alumnet/internal/token/revocation"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("database open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		users      accountservice.UserStore
		colleges   collegeservice.CollegeStore
		auditStore audit.Store
		revoked    revocation.List
	)
	switch {
	case db != nil:
		users = userstore.NewPostgres(db)
		colleges = collegestore.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
	default:
		log.Warn("no DATABASE_URL set, using in-memory stores")
		users = userstore.NewInMemory()
		colleges = collegestore.NewInMemory()
		auditStore = audit.NewInMemoryStore()
	}
	switch {
	case redisClient != nil:
		revoked = revocation.NewRedis(redisClient.Client)
	case db != nil:
		revoked = revocation.NewPostgres(db)
	default:
		revoked = revocation.NewMemory()
	}

	m := metrics.New()
	tokens := jwttoken.NewService(cfg.JWT)
	collegeSvc := collegeservice.New(colleges, collegeservice.WithLogger(log))

	accountOpts := []accountservice.Option{
		accountservice.WithLogger(log),
		accountservice.WithMetrics(m),
		accountservice.WithAuditPublisher(audit.NewPublisher(auditStore)),
		accountservice.WithTrustedDomains(cfg.TrustedEmailDomains),
		accountservice.WithRefreshRotation(cfg.JWT.RotateRefreshTokens),
	}
	if cfg.Google.ClientID != "" {
		verifier, err := google.New(ctx, cfg.Google.ClientID, cfg.ProviderTimeout)
		if err != nil {
			log.Error("google verifier init failed", "error", err)
			os.Exit(1)
		}
		accountOpts = append(accountOpts, accountservice.WithVerifier(identity.ProviderGoogle, verifier))
	}
	if cfg.LinkedIn.ClientID != "" {
		accountOpts = append(accountOpts,
			accountservice.WithVerifier(identity.ProviderLinkedIn, linkedin.New(cfg.ProviderTimeout, cfg.LinkedIn.BaseURL)))
	}
	accountSvc := accountservice.New(users, collegeSvc, tokens, revoked, accountOpts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	accountHandler := accounthandler.New(accountSvc, log)
	accountHandler.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		accountHandler.RegisterAuthenticated(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, log))
		accountHandler.RegisterAdmin(r)
		collegehandler.New(collegeSvc, log).Register(r)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, r)
	log.Info("starting alumnet server", "addr", cfg.Addr, "rotation", cfg.JWT.RotateRefreshTokens)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
