package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	middleware "github.com/rgdevment/billboard-registry/internal/platform/http/middleware"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/config"
	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/platform/authz"
	httpHandler "github.com/rgdevment/billboard-registry/internal/platform/http"
	"github.com/rgdevment/billboard-registry/internal/platform/metrics"
	"github.com/rgdevment/billboard-registry/internal/platform/objectstore"
	"github.com/rgdevment/billboard-registry/internal/platform/storage"
	"github.com/rgdevment/billboard-registry/internal/query"
	"github.com/rgdevment/billboard-registry/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if cfg.APIMasterKey == "" {
		log.Fatal("❌ API_MASTER_KEY is required in .env")
	}
	if cfg.JWTSecret == "" {
		log.Println("⚠️  JWT_SECRET not set, bearer tokens will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("🪧  Starting Billboard Violation Registry...")

	repo, closeRepo, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Error opening storage: %v", err)
	}
	defer closeRepo()

	objects, err := objectstore.NewClient(objectstore.Config{
		Endpoint:        cfg.MinioEndpoint,
		AccessKeyID:     cfg.MinioAccessKey,
		SecretAccessKey: cfg.MinioSecretKey,
		UseSSL:          cfg.MinioUseSSL,
		Bucket:          cfg.MinioBucket,
	})
	if err != nil {
		log.Fatalf("❌ Error configuring object storage: %v", err)
	}
	var images service.ImageStore
	if objects.Enabled() {
		images = objects
	} else {
		log.Println("⚠️  MINIO_ENDPOINT not set, photos will not be kept")
	}

	catalog, err := domain.DefaultCatalog()
	if err != nil {
		log.Fatalf("❌ Error loading locations: %v", err)
	}

	svc := service.NewReportService(repo, images, classify.NewPlaceholder(nil), catalog)

	if cfg.SeedDemo {
		seedIfEmpty(ctx, svc, catalog)
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		log.Fatalf("❌ Error loading authorization policy: %v", err)
	}

	handler := httpHandler.NewHandler(svc, catalog, enforcer,
		middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst))

	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.APIMasterKey, []byte(cfg.JWTSecret)))
		handler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  Shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ HTTP server error: %v", err)
	}
	log.Println("👋 Server stopped")
}

// seedIfEmpty loads demo reports into an empty store.
func seedIfEmpty(ctx context.Context, svc service.Service, catalog *domain.Catalog) {
	existing, err := svc.QueryReports(ctx, query.Filter{})
	if err != nil {
		log.Printf("⚠️  Demo seed skipped: %v", err)
		return
	}
	if !existing.Empty() {
		return
	}

	now := time.Now().UTC()
	rng := rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
	reports := domain.GenerateMockReports(catalog, rng, now, domain.MaxMockReports)

	n, err := svc.ImportReports(ctx, reports)
	if err != nil {
		log.Printf("⚠️  Demo seed incomplete: %v", err)
	}
	log.Printf("🌱 Seeded %d demo reports", n)
}
