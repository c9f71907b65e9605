package http

import (
	"log/slog"
	"time"

	"github.com/fleetmind/rentalhub/internal/auth"
	"github.com/fleetmind/rentalhub/internal/config"
	"github.com/fleetmind/rentalhub/internal/http/handlers"
	"github.com/fleetmind/rentalhub/internal/http/middlewares"
	"github.com/fleetmind/rentalhub/internal/mailer"
	"github.com/fleetmind/rentalhub/internal/observability"
	"github.com/fleetmind/rentalhub/internal/repo/postgres"
	"github.com/fleetmind/rentalhub/internal/resettoken"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router wires together. main builds it once.
type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Pool     *pgxpool.Pool
	Prom     *observability.Prom
	Registry *prometheus.Registry
	JWT      *auth.Manager
	Resets   *resettoken.Registry
	Mail     mailer.Mailer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware([]string{d.Cfg.FrontendURL}))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("rentalhub-api"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// repositories
	usersRepo := postgres.NewUsersRepo(d.Pool, d.Prom)
	brandsRepo := postgres.NewBrandsRepo(d.Pool, d.Prom)
	carsRepo := postgres.NewCarsRepo(d.Pool, d.Prom)
	clientsRepo := postgres.NewClientsRepo(d.Pool, d.Prom)
	rentalsRepo := postgres.NewRentalsRepo(d.Pool, d.Prom)
	jobsRepo := postgres.NewJobsRepo(d.Pool, d.Prom)

	// handlers
	healthHandler := handlers.NewHealthHandler(d.Pool)
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, d.JWT, d.Resets, d.Mail, d.Prom, d.Cfg)
	brandsHandler := handlers.NewBrandsHandler(brandsRepo)
	carsHandler := handlers.NewCarsHandler(carsRepo)
	clientsHandler := handlers.NewClientsHandler(clientsRepo)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	rentalsHandler := handlers.NewRentalsHandler(rentalsRepo, jobsRepo)

	authmw := middlewares.NewAuthMiddleware(d.JWT)

	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// credential endpoints get a tight per-IP window
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
		authGroup.POST("/forgot-password", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.ForgotPassword)
		authGroup.POST("/reset-password", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.ResetPassword)
		authGroup.GET("/me", authmw.RequireAuth(), authHandler.Me)
	}

	// catalog reads are public, writes are admin-only
	r.GET("/brands", brandsHandler.List)
	r.GET("/brands/:id", brandsHandler.GetByID)
	r.GET("/cars", carsHandler.List)
	r.GET("/cars/:id", carsHandler.GetByID)

	admin := r.Group("/", authmw.RequireAuth(), authmw.RequireRole("admin"))
	{
		admin.POST("/brands", brandsHandler.Create)
		admin.PUT("/brands/:id", brandsHandler.Update)
		admin.DELETE("/brands/:id", brandsHandler.Delete)

		admin.POST("/cars", carsHandler.Create)
		admin.PUT("/cars/:id", carsHandler.Update)
		admin.DELETE("/cars/:id", carsHandler.Delete)

		admin.POST("/users", usersHandler.Create)
		admin.GET("/users", usersHandler.List)
		admin.GET("/users/:id", usersHandler.GetByID)
		admin.PUT("/users/:id", usersHandler.Update)
		admin.DELETE("/users/:id", usersHandler.Delete)
	}

	authed := r.Group("/", authmw.RequireAuth())
	{
		authed.POST("/clients", clientsHandler.Create)
		authed.GET("/clients", clientsHandler.List)
		authed.GET("/clients/:id", clientsHandler.GetByID)
		authed.PUT("/clients/:id", clientsHandler.Update)
		authed.DELETE("/clients/:id", clientsHandler.Delete)

		authed.POST("/rentals", rentalsHandler.Create)
		authed.GET("/rentals", rentalsHandler.List)
		authed.GET("/rentals/:id", rentalsHandler.GetByID)
		authed.PUT("/rentals/:id", rentalsHandler.Update)
		authed.DELETE("/rentals/:id", rentalsHandler.Delete)
	}

	return r
}
