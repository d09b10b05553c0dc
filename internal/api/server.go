package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/api/handlers"
	"github.com/aurasflow/backend/internal/api/middleware"
	"github.com/aurasflow/backend/internal/auth"
	"github.com/aurasflow/backend/internal/config"
	"github.com/aurasflow/backend/internal/health"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/services"
	"github.com/aurasflow/backend/internal/websocket"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *gorm.DB
	redis    *redis.Client
	wsHub    *websocket.Hub
	auth     *auth.Service
	limiter  *auth.RateLimiter
	checker  *health.Checker
	services *services.Container
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, wsHub *websocket.Hub, authService *auth.Service, svc *services.Container) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var limiter *auth.RateLimiter
	if redisClient != nil {
		limiter = auth.NewRateLimiter(redisClient)
	}

	server := &Server{
		router:   gin.New(),
		config:   cfg,
		db:       db,
		redis:    redisClient,
		wsHub:    wsHub,
		auth:     authService,
		limiter:  limiter,
		checker:  health.NewChecker(db, redisClient),
		services: svc,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.Use(logger.GinMiddleware())
	s.router.Use(logger.GinRecovery())
	s.router.Use(middleware.CORS(s.config.CORSOrigin))

	s.checker.RegisterRoutes(s.router)

	v1 := s.router.Group("/api/v1")
	{
		// Auth routes (public)
		authGroup := v1.Group("/auth")
		authGroup.Use(middleware.RateLimit(s.limiter, auth.RateLimitAuth))
		{
			authHandler := handlers.NewAuthHandler(s.auth)
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.Auth(s.auth))
		protected.Use(middleware.RateLimit(s.limiter, auth.RateLimitDefault))
		{
			authHandler := handlers.NewAuthHandler(s.auth)
			protected.POST("/auth/logout", authHandler.Logout)

			// Projects and their social links
			projects := protected.Group("/projects")
			{
				projectHandler := handlers.NewProjectHandler(s.services)
				projects.GET("", projectHandler.List)
				projects.POST("", projectHandler.Create)
				projects.GET("/:id", projectHandler.Get)
				projects.PUT("/:id", projectHandler.Update)
				projects.DELETE("/:id", projectHandler.Delete)
				projects.GET("/:id/social", projectHandler.ListSocialLinks)
				projects.POST("/:id/social", projectHandler.AddSocialLink)

				// Content generation (credit-metered)
				contentHandler := handlers.NewContentHandler(s.services)
				projects.POST("/:id/content/generate", contentHandler.Generate)
				projects.GET("/:id/content/results", contentHandler.Results)

				// Marketing plans
				planHandler := handlers.NewPlanHandler(s.services)
				projects.POST("/:id/plans", planHandler.Generate)
			}

			plans := protected.Group("/plans")
			{
				planHandler := handlers.NewPlanHandler(s.services)
				plans.GET("/:id", planHandler.Get)
				plans.POST("/:id/approve", planHandler.Approve)
			}

			dashboard := protected.Group("/dashboard")
			{
				dashboardHandler := handlers.NewDashboardHandler(s.services)
				dashboard.GET("/stats", dashboardHandler.GetStats)
				dashboard.GET("/credits", dashboardHandler.GetCreditHistory)
			}

			userHandler := handlers.NewUserHandler(s.services)
			protected.GET("/profile", userHandler.GetProfile)
			protected.PUT("/profile", userHandler.UpdateProfile)
		}

		// WebSocket endpoint
		v1.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(s.wsHub, c.Writer, c.Request, s.config.JWTSecret)
		})
	}
}

// SetReady marks the readiness probe.
func (s *Server) SetReady(ready bool) {
	s.checker.SetReady(ready)
}

// Handler exposes the router for tests and custom http servers.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
