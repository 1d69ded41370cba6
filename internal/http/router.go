package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/edutrackpro/edutrack/internal/analytics"
	"github.com/edutrackpro/edutrack/internal/auth"
	"github.com/edutrackpro/edutrack/internal/config"
	"github.com/edutrackpro/edutrack/internal/domain/user"
	"github.com/edutrackpro/edutrack/internal/http/handlers"
	"github.com/edutrackpro/edutrack/internal/http/middlewares"
	"github.com/edutrackpro/edutrack/internal/observability"
	"github.com/edutrackpro/edutrack/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires the full HTTP surface: auth, the parent analytics routes,
// the staff CRUD resources and the operational endpoints.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Each router gets its own metrics registry so tests can build routers
	// freely without duplicate-registration panics.
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("edutrack-api"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	// operational endpoints

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// repositories

	usersRepo := postgres.NewUsersRepo(pool)
	studentsRepo := postgres.NewStudentsRepo(pool, prom)
	performancesRepo := postgres.NewPerformancesRepo(pool, prom)
	alertsRepo := postgres.NewAlertsRepo(pool, prom)
	statsRepo := postgres.NewStatsRepo(pool, prom)

	// token service + gate

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())
	denylist := auth.NewDenylist(rdb)
	gate := middlewares.NewAuthMiddleware(jwtManager, denylist)

	superuser := user.Superuser{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}

	// handlers

	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, denylist, superuser, prom)
	engine := analytics.NewEngine(studentsRepo, performancesRepo, alertsRepo)
	parentsHandler := handlers.NewParentsHandler(engine, log)
	studentsHandler := handlers.NewStudentsHandler(studentsRepo)
	teachersHandler := handlers.NewTeachersHandler(usersRepo)
	performancesHandler := handlers.NewPerformancesHandler(performancesRepo)
	alertsHandler := handlers.NewAlertsHandler(alertsRepo)
	dashboardHandler := handlers.NewDashboardHandler(statsRepo)

	// auth routes; login and register carry a per-IP limiter

	limiter := middlewares.NewRateLimiter(20, time.Minute)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", limiter.Middleware(middlewares.KeyByIP), authHandler.Register)
		authGroup.POST("/login", limiter.Middleware(middlewares.KeyByIP), authHandler.Login)

		protected := authGroup.Group("", gate.RequireAuth())
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
		protected.PUT("/profile", authHandler.UpdateProfile)
	}

	// parent analytics routes: parent-only, and the path parent must be the
	// caller (admins excepted)

	parents := r.Group("/parents/:parentId",
		gate.RequireAuth(),
		gate.RequireRole(user.RoleParent, user.RoleAdmin),
		gate.RequireParentParam(),
	)
	{
		parents.GET("/dashboard", parentsHandler.Dashboard)

		child := parents.Group("/child/:childId")
		child.GET("/report", parentsHandler.ChildReport)
		child.GET("/analysis", parentsHandler.DetailedAnalysis)
		child.GET("/report/export", parentsHandler.ExportReport)
	}

	// staff routes

	staff := gate.RequireRole(user.RoleAdmin, user.RoleTeacher)

	r.GET("/dashboard/stats", gate.RequireAuth(), staff, dashboardHandler.Stats)

	students := r.Group("/students", gate.RequireAuth(), staff)
	{
		students.GET("", studentsHandler.List)
		students.GET("/:id", studentsHandler.Get)
		students.POST("", studentsHandler.Create)
		students.PUT("/:id", studentsHandler.Update)
		students.DELETE("/:id", studentsHandler.Delete)
	}

	teachers := r.Group("/teachers", gate.RequireAuth(), gate.RequireRole(user.RoleAdmin))
	{
		teachers.GET("", teachersHandler.List)
		teachers.GET("/:id", teachersHandler.Get)
		teachers.DELETE("/:id", teachersHandler.Delete)
	}

	performances := r.Group("/performance", gate.RequireAuth(), staff)
	{
		performances.GET("", performancesHandler.List)
		performances.GET("/:id", performancesHandler.Get)
		performances.GET("/student/:studentId", performancesHandler.ListByStudent)
		performances.POST("", performancesHandler.Create)
		performances.PUT("/:id", performancesHandler.Update)
		performances.DELETE("/:id", performancesHandler.Delete)
	}

	alerts := r.Group("/alerts", gate.RequireAuth())
	{
		// any authenticated role may read the feed; only staff mutate it
		alerts.GET("", alertsHandler.List)
		alerts.GET("/:id", alertsHandler.Get)
		alerts.GET("/status/:status", alertsHandler.ListByStatus)
		alerts.POST("", staff, alertsHandler.Create)
		alerts.PUT("/:id", staff, alertsHandler.Update)
		alerts.DELETE("/:id", staff, alertsHandler.Delete)
	}

	return r
}
