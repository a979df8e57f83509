// Package handlers holds the HTTP endpoint implementations. Handlers
// decode and reply; all pipeline decisions live in the service layer.
package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"yaomexi/internal/pkg/logger"
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
}

type Handler struct {
	svc       *service.Service
	templates *templates.Repository
	pool      *pgxpool.Pool
	rdb       *redis.Client
	sp        ports.StorageProvider
	log       *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		svc:       d.Svc,
		templates: d.Templates,
		pool:      d.Pool,
		rdb:       d.RDB,
		sp:        d.SP,
		log:       log.WithComponent("httpapi"),
	}
}
