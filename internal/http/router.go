package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/eventdesk/internal/auth"
	"github.com/geocoder89/eventdesk/internal/cache"
	"github.com/geocoder89/eventdesk/internal/config"
	"github.com/geocoder89/eventdesk/internal/http/handlers"
	"github.com/geocoder89/eventdesk/internal/http/middlewares"
	"github.com/geocoder89/eventdesk/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type UsersStore interface {
	handlers.UserReader
	handlers.UserWriter
}

// Deps are the explicitly constructed collaborators the router wires into
// handlers. Tests substitute the in-memory repos here; nothing reaches for
// module-level singletons.
type Deps struct {
	Events         handlers.EventsStore
	Users          UsersStore
	Refresh        handlers.RefreshTokenStore
	JWT            *auth.Manager
	Metrics        *observability.Prom
	MetricsHandler http.Handler
	ListCache      *cache.Cache
	Ready          func() error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(otelgin.Middleware("eventdesk"))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.GinHandleMiddleware())
	}

	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health + metrics
	h := handlers.NewHealthHandler(deps.Ready)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	// auth collaborator

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Users, deps.JWT, deps.Refresh, cfg)
	authMW := middlewares.NewAuthMiddleware(deps.JWT)

	authLimiter := middlewares.NewRateLimiter(cfg.RateLimit, time.Duration(cfg.RateWindowSeconds)*time.Second).
		RateLimiterMiddleware(middlewares.KeyByIP)

	r.POST("/login", authLimiter, authHandler.Login)
	r.POST("/user/Signup", authLimiter, authHandler.SignUp)
	r.GET("/user/me", authMW.RequireAuth(), authHandler.Me)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.POST("/auth/logout", authHandler.Logout)

	// event resource

	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.ListCache)

	ev := r.Group("/event")
	ev.GET("/getEvent", eventsHandler.ListEvents)
	ev.GET("/getEvent/:eventName", eventsHandler.GetEventByName)
	ev.POST("/addEvent", eventsHandler.CreateEvent)
	ev.PATCH("/updateEvent/:eventName", eventsHandler.UpdateEvent)
	ev.DELETE("/deleteEvent/:eventName", eventsHandler.DeleteEvent)

	return r
}
