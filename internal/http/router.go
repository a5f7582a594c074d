package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	"github.com/Ahammedsa/server-site-fitenss/internal/config"
	"github.com/Ahammedsa/server-site-fitenss/internal/http/handler"
	httpmiddleware "github.com/Ahammedsa/server-site-fitenss/internal/http/middleware"
	"github.com/Ahammedsa/server-site-fitenss/internal/middleware"
)

// Handlers groups the route handlers.
type Handlers struct {
	fx.In

	Health    *handler.HealthHandler
	Sessions  *handler.SessionHandler
	Users     *handler.UserHandler
	Lifecycle *handler.LifecycleHandler
	Catalog   *handler.CatalogHandler
}

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, h Handlers, auth *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)

	r.POST("/jwt", h.Sessions.Issue)
	r.GET("/logout", h.Sessions.Logout)

	// User lifecycle. These routes are intentionally not gated by a session.
	r.PUT("/new-user", h.Lifecycle.NewUser)
	r.PUT("/user", h.Lifecycle.RequestStatus)
	r.PUT("/random", h.Lifecycle.Promote)
	r.PUT("/users/:email", h.Lifecycle.SaveUser)
	r.POST("/users", h.Lifecycle.CreateUser)

	r.GET("/user", h.Users.List)
	r.GET("/users", auth.VerifyToken, h.Users.List)
	r.GET("/users/:id", h.Users.Get)
	r.GET("/test", h.Users.Lookup)
	r.GET("/requested-users", h.Users.ListRequested)
	r.PATCH("/changes/update/:email", h.Users.UpdateProfile)

	r.GET("/trainners", h.Catalog.ListTrainers)
	r.POST("/trainners", h.Catalog.AddTrainer)
	r.GET("/trainnerDetails/:id", h.Catalog.GetTrainer)
	r.GET("/paymentPage/:id", h.Catalog.GetTrainer)

	r.GET("/class", h.Catalog.ListClasses)
	r.POST("/class", auth.VerifyToken, auth.VerifyAdmin, h.Catalog.AddClass)
	r.GET("/classCount", h.Catalog.CountClasses)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
