package http

import (
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/vidtrack/internal/http/handlers"
	"github.com/geocoder89/vidtrack/internal/http/middlewares"
	"github.com/geocoder89/vidtrack/internal/observability"
	"github.com/geocoder89/vidtrack/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for a name or a timestamp

type RouterDeps struct {
	Log       *slog.Logger
	Users     handlers.UsersStore
	ListCache handlers.ListCache

	Metrics  *observability.Prom
	Registry *prometheus.Registry

	// readiness checks for the store and (optionally) the cache
	Pings []func() error

	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfgEnv := os.Getenv("APP_ENV")

	if cfgEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(otelgin.Middleware("vidtrack-api"))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinHandleMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(deps.Pings...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// dashboard page
	r.GET("/", web.DashboardHandler())

	// mutations share one per-IP limiter
	rl := middlewares.NewRateLimiter(60, time.Minute)
	limited := rl.RateLimiterMiddleware()

	usersHandler := handlers.NewUsersHandler(deps.Users, deps.ListCache)

	r.GET("/users", usersHandler.ListUsers)
	r.POST("/users", limited, usersHandler.CreateUser)
	r.PUT("/users/:id", limited, usersHandler.UpdateAssignment)

	return r
}
