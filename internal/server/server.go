package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tasktracker/internal/auth"
	"tasktracker/internal/config"
	"tasktracker/internal/handler"
	"tasktracker/internal/middleware"
	"tasktracker/internal/migrations"
	"tasktracker/internal/ratelimit"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
)

type Server struct {
	Engine  *gin.Engine
	DB      *gorm.DB
	Config  *config.Config
	limiter ratelimit.Limiter
}

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth          *handler.AuthHandler
	Members       *handler.MemberHandler
	Tasks         *handler.TaskHandler
	HelpRequests  *handler.HelpRequestHandler
	Authenticator middleware.Authenticator
	// AuthLimiter guards register and login; nil disables the limit.
	AuthLimiter ratelimit.Limiter
	// Ping backs the health check.
	Ping func(ctx context.Context) error
}

func Init(cfg *config.Config) (*Server, error) {
	gin.SetMode(cfg.Server.GinMode)

	// Setup GORM
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if cfg.Database.RunMigrations {
		if err := migrations.Up(cfg.Database.MigrationURL()); err != nil {
			return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
		}
	}

	limiter, err := newAuthLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	helpRequestRepo := repository.NewHelpRequestRepository(db)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	authService := service.NewAuthService(memberRepo, tokens)
	memberService := service.NewMemberService(memberRepo, roleRepo)
	taskService := service.NewTaskService(taskRepo, assignmentRepo, memberRepo)
	helpRequestService := service.NewHelpRequestService(helpRequestRepo, memberRepo, taskRepo)

	engine := NewEngine(cfg, Handlers{
		Auth:          handler.NewAuthHandler(memberService, authService),
		Members:       handler.NewMemberHandler(memberService),
		Tasks:         handler.NewTaskHandler(taskService),
		HelpRequests:  handler.NewHelpRequestHandler(helpRequestService),
		Authenticator: authService,
		AuthLimiter:   limiter,
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	return &Server{
		Engine:  engine,
		DB:      db,
		Config:  cfg,
		limiter: limiter,
	}, nil
}

func newAuthLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, error) {
	if cfg.AuthPerMinute <= 0 {
		return nil, nil
	}
	if cfg.RedisURL == "" {
		log.Printf("✅ Auth rate limit %d/min (in-process)", cfg.AuthPerMinute)
		return ratelimit.NewMemoryLimiter(cfg.AuthPerMinute, time.Minute), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rl, err := ratelimit.NewRedisLimiter(ctx, cfg.RedisURL, cfg.AuthPerMinute, time.Minute)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to Redis: %w", err)
	}
	log.Printf("✅ Auth rate limit %d/min (redis)", cfg.AuthPerMinute)
	return rl, nil
}

// NewEngine builds the gin engine with middleware and every route.
func NewEngine(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/up", health(h.Ping))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")

	// Public routes
	public := api.Group("/auth")
	if h.AuthLimiter != nil {
		public.Use(middleware.AuthRateLimit(h.AuthLimiter))
	}
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)

	// Protected routes - require authentication
	authorized := api.Group("")
	authorized.Use(middleware.JWTAuthMiddleware(h.Authenticator))
	{
		authorized.POST("/auth/logout", h.Auth.Logout)

		// Member routes
		authorized.GET("/members", h.Members.List)
		authorized.POST("/members", h.Members.Create)
		authorized.GET("/members/:id", h.Members.Get)
		authorized.PUT("/members/:id", h.Members.Update)
		authorized.PATCH("/members/:id", h.Members.Update)
		authorized.DELETE("/members/:id", h.Members.Delete)

		// Task routes
		authorized.GET("/tasks", h.Tasks.List)
		authorized.POST("/tasks", h.Tasks.Create)
		authorized.GET("/tasks/:id", h.Tasks.Get)
		authorized.PUT("/tasks/:id", h.Tasks.Update)
		authorized.PATCH("/tasks/:id", h.Tasks.Update)
		authorized.DELETE("/tasks/:id", h.Tasks.Delete)

		// Assignment routes
		authorized.POST("/tasks/:id/assign", h.Tasks.Assign)
		authorized.DELETE("/tasks/:id/unassign/:member_id", h.Tasks.Unassign)
		authorized.GET("/tasks/:id/assignments", h.Tasks.Assignments)
		authorized.POST("/tasks/:id/complete", h.Tasks.Complete)

		// Help request routes
		authorized.GET("/help_requests/admins", h.HelpRequests.Admins)
		authorized.POST("/help_requests", h.HelpRequests.Create)
		authorized.GET("/help_requests", h.HelpRequests.List)
		authorized.POST("/help_requests/:id/answer", h.HelpRequests.Answer)
	}

	return r
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Printf("❌ health check failed: %v", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			log.Printf("⚠️  Failed to close rate limiter: %s", err)
		}
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("✅ Server exited properly")
}
