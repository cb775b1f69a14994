package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/civicsync/civicsync-api/docs"
	"github.com/civicsync/civicsync-api/internal/api/handler"
	"github.com/civicsync/civicsync-api/internal/api/middleware"
	"github.com/civicsync/civicsync-api/internal/core/domain"
	"github.com/civicsync/civicsync-api/internal/core/service"
	"github.com/civicsync/civicsync-api/internal/infrastructure/config"
	mongodb "github.com/civicsync/civicsync-api/internal/infrastructure/db/mongo"
	redisdb "github.com/civicsync/civicsync-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, points service.PointsQueue, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("civicsync"))

	// --- Dependencies ---
	principalRepo := mongodb.NewPrincipalRepository(db)
	issueRepo := mongodb.NewIssueRepository(db)
	voteGuard := redisdb.NewVoteGuard(rdb)

	authService := service.NewAuthService(principalRepo, cfg.JWTSecret, cfg.TokenTTL)
	issueService := service.NewIssueService(issueRepo, principalRepo, points, log)
	voteService := service.NewVoteService(issueRepo, principalRepo, voteGuard, points, log)

	authHandler := handler.NewAuthHandler(authService)
	issueHandler := handler.NewIssueHandler(issueService)
	voteHandler := handler.NewVoteHandler(voteService)

	// --- Public routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Protected routes ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret))
	v1.POST("/issues", issueHandler.Raise, middleware.RBAC(domain.RoleCitizen))
	v1.GET("/issues", issueHandler.List)
	v1.GET("/issues/:id", issueHandler.Get)
	v1.POST("/issues/:id/assign", issueHandler.Assign, middleware.RBAC(domain.RoleAuthority))
	v1.POST("/issues/:id/resolve", issueHandler.Resolve, middleware.RBAC(domain.RoleAuthority))
	v1.POST("/issues/:id/upvote", voteHandler.Upvote)
	v1.POST("/issues/:id/downvote", voteHandler.Downvote)
	v1.POST("/points/award", voteHandler.AwardPoints, middleware.RBAC(domain.RoleAuthority))

	return e
}
