package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"yaomexi/internal/pkg/config"
	"yaomexi/internal/pkg/logger"
	"yaomexi/internal/pkg/shutdown"
	"yaomexi/internal/queue"
	"yaomexi/internal/storage"
	"yaomexi/internal/store"
	"yaomexi/internal/worker"
	"yaomexi/internal/worker/renderer"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:       config.Env("LOG_LEVEL", "info"),
		Format:      config.Env("LOG_FORMAT", "json"),
		ServiceName: "yaomexi-worker",
		AddSource:   config.BoolEnv("LOG_SOURCE", false),
	})

	log.Info("starting yaomexi worker")

	redisAddr := config.MustEnv("REDIS_ADDR")
	rendererBaseURL := config.MustEnv("RENDERER_HTTP_BASEURL")
	queueName := config.Env("JOB_QUEUE_NAME", queue.DefaultName)
	scratchRoot := config.Env("WORKER_SCRATCH_ROOT", "/tmp/yaomexi")
	dequeueTimeout := config.DurationEnv("WORKER_DEQUEUE_TIMEOUT", worker.DefaultDequeueTimeout)

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)
	ctx := shutdownMgr.Context()

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

	w := worker.New(worker.Deps{
		Jobs:           store.NewJobStore(rdb),
		Uploads:        store.NewUploadRegistry(rdb),
		Queue:          queue.New(rdb, queueName),
		Renderer:       renderer.NewHTTPClient(rendererBaseURL),
		Storage:        sp,
		ScratchRoot:    scratchRoot,
		DequeueTimeout: dequeueTimeout,
		Log:            log,
	})

	w.Run(ctx)
	shutdownMgr.Shutdown()
}
