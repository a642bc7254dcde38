package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/bryanwahyu/emergency-response/internal/application"
	appanalysis "github.com/bryanwahyu/emergency-response/internal/application/analysis"
	appdispatch "github.com/bryanwahyu/emergency-response/internal/application/dispatch"
	apphospitals "github.com/bryanwahyu/emergency-response/internal/application/hospitals"
	appquota "github.com/bryanwahyu/emergency-response/internal/application/quota"
	"github.com/bryanwahyu/emergency-response/internal/config"
	domanalysis "github.com/bryanwahyu/emergency-response/internal/domain/analysis"
	domdispatch "github.com/bryanwahyu/emergency-response/internal/domain/dispatch"
	domhospitals "github.com/bryanwahyu/emergency-response/internal/domain/hospitals"
	domquota "github.com/bryanwahyu/emergency-response/internal/domain/quota"
	aiclient "github.com/bryanwahyu/emergency-response/internal/infra/ai/openai"
	"github.com/bryanwahyu/emergency-response/internal/infra/cache"
	filestore "github.com/bryanwahyu/emergency-response/internal/infra/counterstore/file"
	mysqlstore "github.com/bryanwahyu/emergency-response/internal/infra/counterstore/mysql"
	pgstore "github.com/bryanwahyu/emergency-response/internal/infra/counterstore/postgres"
	"github.com/bryanwahyu/emergency-response/internal/infra/httpserver"
	gmaps "github.com/bryanwahyu/emergency-response/internal/infra/maps"
	minioStore "github.com/bryanwahyu/emergency-response/internal/infra/storage"
	"github.com/bryanwahyu/emergency-response/internal/middleware"
)

func main() {
	// .env is optional, same as running with exported vars
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()
	clock := application.SystemClock{}

	// durable counter store
	store, closeStore, err := newCounterStore(ctx, cfg)
	if err != nil {
		log.Fatalf("counter store error: %v", err)
	}
	defer closeStore()

	quotaSvc := appquota.NewService(store, cfg.DailyLimits(), clock, cfg.CostProtection.DemoMode)
	if cfg.CostProtection.DemoMode {
		log.Printf("starting in demo mode, no live API charges will occur")
	}

	// AI provider is optional; without a key everything runs rule-based
	var provider domanalysis.Provider
	if cfg.OpenAI.APIKey != "" {
		provider = aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Printf("OPENAI_API_KEY not set, rule-based analysis only")
	}

	resultCache := cache.NewMemory(clock)
	analysisSvc := appanalysis.NewService(resultCache, quotaSvc, provider, clock)
	analysisSvc.CacheTTL = time.Duration(cfg.Cache.TTLSeconds) * time.Second
	analysisSvc.Precision = cfg.Cache.CoordPrecision

	// hospital search
	var searcher domhospitals.Searcher
	if cfg.GoogleMaps.APIKey != "" {
		searcher, err = gmaps.NewSearcher(cfg.GoogleMaps.APIKey)
		if err != nil {
			log.Fatalf("maps client error: %v", err)
		}
	} else {
		log.Printf("GOOGLE_MAPS_API_KEY not set, demo hospital list only")
	}
	hospitalsSvc := apphospitals.NewService(searcher, quotaSvc.DemoMode)

	// incident report archive is optional
	var archive domdispatch.ReportArchive
	if cfg.Minio.Endpoint != "" {
		archive, err = minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
	}
	dispatchSvc := appdispatch.NewService(nil, archive, quotaSvc.DemoMode)

	// scheduled jobs: sweep expired cache entries, log the daily usage recap
	c := cron.New()
	_, _ = c.AddFunc("@every 5m", func() {
		if n := resultCache.Sweep(); n > 0 {
			log.Printf("cache sweep removed %d expired entries", n)
		}
	})
	_, _ = c.AddFunc("55 23 * * *", func() {
		report, err := quotaSvc.Report(context.Background())
		if err != nil {
			log.Printf("daily usage report error: %v", err)
			return
		}
		log.Printf("daily usage: date=%s total_cost=%.4f demo=%v", report.Date, report.TotalCost, report.DemoMode)
	})
	c.Start()
	defer c.Stop()

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.RateLimitMiddleware(30, 10))
	mux.Mount("/", httpserver.NewRouter(analysisSvc, hospitalsSvc, dispatchSvc, quotaSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// newCounterStore picks the durable backing for usage counters.
func newCounterStore(ctx context.Context, cfg *config.Config) (domquota.CounterStore, func(), error) {
	switch cfg.CostProtection.StoreDriver {
	case "mysql":
		s, err := mysqlstore.Connect(ctx, cfg.CostProtection.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "postgres":
		s, err := pgstore.Connect(ctx, cfg.CostProtection.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		s, err := filestore.New(cfg.CostProtection.UsageFile)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}
