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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pharmacy-consult-sim/internal/config"
	"pharmacy-consult-sim/internal/consultation"
	"pharmacy-consult-sim/internal/http/middleware"
	"pharmacy-consult-sim/internal/observability/metrics"
	"pharmacy-consult-sim/internal/platform/telegram"
	"pharmacy-consult-sim/internal/report"
	"pharmacy-consult-sim/internal/simulation"
	"pharmacy-consult-sim/pkg/logging"
)

func main() {
	// .env is optional
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "consultsim")
	if err != nil {
		logger = logging.Default()
	}
	defer func() { _ = logger.Sync() }()

	// 1. Infrastructure
	repo, closeRepo, err := openRepository(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open consultation store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeRepo()

	// 2. Engine
	engine, err := simulation.NewDefaultEngine(
		simulation.WithRandomHidden(cfg.RandomizeHidden),
		simulation.WithRepeatQuestions(cfg.AllowRepeat),
	)
	if err != nil {
		logger.Fatal("invalid simulation content", zap.Error(err))
	}

	// 3. Services
	var reportSvc consultation.ReportService
	if cfg.ReportsEnabled() {
		tgClient := telegram.NewClient(cfg.TelegramBotToken)
		reportSvc = report.NewService(tgClient, cfg.TelegramChatID, cfg.ReportFontPath, logger)
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, session reports disabled")
	}

	simMetrics := metrics.NewSimulationMetrics(prometheus.DefaultRegisterer)
	consultationSvc := consultation.NewService(repo, engine, reportSvc, simMetrics, logger)
	consultationHandler := consultation.NewHandler(consultationSvc, logger)

	// 4. Router
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api", func(r chi.Router) {
		consultation.RegisterRoutes(r, consultationHandler)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env), zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func openRepository(cfg *config.Config, logger *zap.Logger) (consultation.Repository, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := connectDB(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := runMigrations(cfg.MigrationsURL, cfg.DatabaseURL, logger); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return consultation.NewRepository(db), func() { _ = db.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		return consultation.NewRedisRepository(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
	default:
		logger.Info("using in-memory consultation store")
		return consultation.NewMemoryRepository(), func() {}, nil
	}
}

func connectDB(dsn string, logger *zap.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres store")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// Simple retry logic for DB connection
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			logger.Info("connected to database")
			return db, nil
		}
		logger.Info("waiting for database", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	_ = db.Close()
	return nil, err
}

func runMigrations(sourceURL, dsn string, logger *zap.Logger) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	logger.Info("migrations applied")
	return nil
}
