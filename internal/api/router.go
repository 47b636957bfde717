package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/accessly/rbac-service/internal/api/handler"
	"github.com/accessly/rbac-service/internal/core/service"
	mongorepo "github.com/accessly/rbac-service/internal/infrastructure/db/mongo"
	redisinfra "github.com/accessly/rbac-service/internal/infrastructure/db/redis"
	"github.com/accessly/rbac-service/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("rbac"))

	// --- Dependencies ---
	roleRepo := mongorepo.NewRoleRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	limiter := redisinfra.NewLoginLimiter(rdb)

	roleService := service.NewRoleService(roleRepo, log)
	userService := service.NewUserService(userRepo, roleRepo, log)
	authService := service.NewAuthService(userRepo, roleRepo, limiter, jwtSecret, time.Hour, log)

	roleHandler := handler.NewRoleHandler(roleService)
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)

	// --- Role routes ---
	roles := e.Group("/roles")
	roles.POST("", roleHandler.Create)
	roles.GET("", roleHandler.List)
	roles.PATCH("/update-access-modules", roleHandler.UpdateAccessModules)
	roles.PATCH("/add-access-module", roleHandler.AddAccessModule)
	roles.PATCH("/remove-access-module", roleHandler.RemoveAccessModule)
	roles.GET("/:id", roleHandler.Get)
	roles.PUT("/:id", roleHandler.Update)
	roles.DELETE("/:id", roleHandler.Delete)

	// --- User routes ---
	users := e.Group("/users")
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.PUT("/bulk/same", userHandler.BulkUpdateSame)
	users.PUT("/bulk/different", userHandler.BulkUpdateDifferent)
	users.POST("/check-access", userHandler.CheckAccess)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
