package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"yaomexi/internal/httpapi"
	"yaomexi/internal/pkg/config"
	"yaomexi/internal/pkg/logger"
	"yaomexi/internal/pkg/shutdown"
	"yaomexi/internal/queue"
	"yaomexi/internal/service"
	"yaomexi/internal/storage"
	"yaomexi/internal/store"
	"yaomexi/internal/templates"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:       config.Env("LOG_LEVEL", "info"),
		Format:      config.Env("LOG_FORMAT", "json"),
		ServiceName: "yaomexi-api",
		AddSource:   config.BoolEnv("LOG_SOURCE", false),
	})

	log.Info("starting yaomexi API")

	httpPort := config.Env("HTTP_PORT", "8080")
	dbURL := config.MustEnv("DATABASE_URL")
	redisAddr := config.MustEnv("REDIS_ADDR")
	queueName := config.Env("JOB_QUEUE_NAME", queue.DefaultName)

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}
	log.Info("PostgreSQL connected")

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected")

	sp, err := storage.NewProvider(ctx, storage.ConfigFromEnv())
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	log.Info("storage provider initialized", "provider", sp.Provider())

	tmplRepo := templates.NewRepository(pool)

	svc := service.New(service.Deps{
		Jobs:      store.NewJobStore(rdb),
		Uploads:   store.NewUploadRegistry(rdb),
		Queue:     queue.New(rdb, queueName),
		Templates: tmplRepo,
		Storage:   sp,
		Log:       log,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Svc:       svc,
		Templates: tmplRepo,
		Pool:      pool,
		RDB:       rdb,
		SP:        sp,
		Log:       log,
		AllowedOrigins: config.CSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
		}),
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + httpPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}
