// Package router wires middleware and endpoints onto the echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tracknest/ticket-tracker/internal/auth"
	"github.com/tracknest/ticket-tracker/internal/config"
	"github.com/tracknest/ticket-tracker/internal/handler"
	"github.com/tracknest/ticket-tracker/internal/middleware"
	"github.com/tracknest/ticket-tracker/internal/repository"
)

// RegisterRoutes mounts every endpoint and the shared middleware chain.
// Order matters: metrics wrap everything so denied requests still get
// counted, and the principal resolver must run before the policy table.
func RegisterRoutes(e *echo.Echo, db *sql.DB, rdb *redis.Client, codec *auth.Codec, cfg config.Config) {
	users := repository.NewUserRepo(db)
	projects := repository.NewProjectRepo(db)
	boards := repository.NewBoardRepo(db)
	tickets := repository.NewTicketRepo(db)

	authH := handler.NewAuthHandler(codec, users, cfg.BcryptCost)
	projectH := handler.NewProjectHandler(projects, users)
	boardH := handler.NewBoardHandler(boards, projects)
	ticketH := handler.NewTicketHandler(tickets, boards, projects, users)
	healthH := handler.NewHealthHandler(db)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true, LogURI: true, LogMethod: true, LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Metrics())
	e.Use(middleware.ResolvePrincipal(codec))
	e.Use(middleware.RoutePolicy())

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	docsCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/healthz", healthH.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/docs", handler.Docs, docsCache)

	authG := api.Group("/auth")
	authG.POST("/authenticate", authH.Authenticate, rateLimit)
	authG.POST("/register", authH.Register)
	authG.GET("/me", authH.Me)
	authG.GET("/users", authH.ListUsers)
	authG.PUT("/users/:id", authH.UpdateUser)
	authG.DELETE("/users/:id", authH.DeleteUser)
	authG.PATCH("/users/profile-picture", authH.UpdateProfilePicture)

	projectG := api.Group("/projects")
	projectG.POST("", projectH.Create)
	projectG.GET("", projectH.List)
	projectG.GET("/:id", projectH.Get)
	projectG.PUT("/:id", projectH.Update)
	projectG.DELETE("/:id", projectH.Delete)
	projectG.GET("/:projectId/members", projectH.ListMembers)
	projectG.POST("/:projectId/users/:userId", projectH.AddMember)
	projectG.DELETE("/:projectId/users/:userId", projectH.RemoveMember)

	boardG := api.Group("/boards")
	boardG.POST("", boardH.Create)
	boardG.GET("", boardH.List)
	boardG.GET("/by-project/:projectId", boardH.ByProject)
	boardG.GET("/:id", boardH.Get)
	boardG.PUT("/:id", boardH.Update)
	boardG.DELETE("/:id", boardH.Delete)

	ticketG := api.Group("/tickets")
	ticketG.POST("", ticketH.Create)
	ticketG.GET("", ticketH.List)
	ticketG.GET("/by-board/:boardId", ticketH.ByBoard)
	ticketG.GET("/:id", ticketH.Get)
	ticketG.PUT("/:id", ticketH.Update)
	ticketG.DELETE("/:id", ticketH.Delete)
}
