package server

import (
	"time"

	"github.com/authordata/author-service/handlers"
	"github.com/authordata/author-service/internal/author/handler"
	"github.com/authordata/author-service/internal/author/service"
	"github.com/authordata/author-service/internal/config"
	"github.com/authordata/author-service/pkg/logger"
	"github.com/authordata/author-service/pkg/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Service service.Service
	// Ready lists dependencies checked by /ready.
	Ready map[string]handlers.Pinger
	// Redis backs the rate limiter when RateLimit.UseRedis is set.
	Redis *redis.Client
	// Gatherer serves /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter assembles the HTTP surface: middleware, health checks, metrics,
// API docs and the /author resource.
func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(), gzip.Gzip(gzip.DefaultCompression))

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter enabled (redis, %v rps)", cfg.RateLimit.RPS)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter enabled (in-process, %v rps)", cfg.RateLimit.RPS)
		}
	}

	handlers.RegisterHealth(r, d.Ready)
	handlers.RegisterSwagger(r)

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	handler.New(d.Service, cfg.Author.ErrorMode).Register(r)
	return r
}
