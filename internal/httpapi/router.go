// Package httpapi assembles the public HTTP surface of the pipeline.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"yaomexi/internal/httpapi/handlers"
	"yaomexi/internal/httpkit"
	"yaomexi/internal/pkg/logger"
	"yaomexi/internal/pkg/metrics"
	"yaomexi/internal/pkg/middleware"
	"yaomexi/internal/ports"
	"yaomexi/internal/service"
	"yaomexi/internal/templates"
)

type Deps struct {
	Svc       *service.Service
	Templates *templates.Repository
	Pool      *pgxpool.Pool
	RDB       *redis.Client
	SP        ports.StorageProvider
	Log       *logger.Logger

	// AllowedOrigins is the CORS allow-list, populated from config in main.
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))

	allowedOrigins := d.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	h := handlers.New(handlers.Deps{
		Svc:       d.Svc,
		Templates: d.Templates,
		Pool:      d.Pool,
		RDB:       d.RDB,
		SP:        d.SP,
		Log:       log,
	})

	metrics.MustRegister()

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/videos/tiktok", h.PostScriptedVideo)
	r.Post("/videos/timeline", h.PostTimelineVideo)
	r.Get("/videos/{jobID}.mp4", h.DownloadVideo)

	r.Get("/jobs/{jobID}", h.GetJob)

	r.Post("/uploads", h.PostUpload)

	r.Post("/templates", h.PostTemplate)
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{templateID}", h.GetTemplate)
	r.Delete("/templates/{templateID}", h.DeleteTemplate)

	return r
}
