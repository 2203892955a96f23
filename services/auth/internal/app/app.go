package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"premier-open-group/pkg/cache"
	"premier-open-group/pkg/config"
	"premier-open-group/pkg/database"
	"premier-open-group/pkg/jwt"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/metrics"
	"premier-open-group/pkg/middleware"
	authHTTP "premier-open-group/services/auth/internal/controller/http"
	tokencache "premier-open-group/services/auth/internal/repo/cache"
	"premier-open-group/services/auth/internal/repo/persistent"
	"premier-open-group/services/auth/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "premier-open-group/services/auth/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	jwtService  *jwt.Service
	metrics     *metrics.Metrics
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		// Without Redis sign-out cannot revoke refresh tokens and nothing is rate limited
		log.Error("Failed to connect to redis: %v (continuing without token revocation)", err)
		redisClient = nil
	}

	jwtService := jwt.NewService(cfg.JWTSecret).WithTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		jwtService:  jwtService,
		metrics:     metrics.New("auth"),
	}, nil
}

// Router wires the auth endpoints.
func (a *App) Router() *gin.Engine {
	userRepo := persistent.NewUserRepository(a.db)
	tokenStore := tokencache.NewTokenStore(a.redisClient)

	authUseCase := usecase.NewAuthUseCase(userRepo, tokenStore, a.jwtService, a.log)
	authHandler := authHTTP.NewAuthHandler(authUseCase, a.log, a.cfg.CookieSecure)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), a.metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.ClientKeyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limit := middleware.RateLimitMiddleware(a.redisClient, 10, time.Minute)

	api := r.Group("/api/v1")
	api.Use(middleware.ClientKey(a.cfg.PortalAPIKey))
	{
		api.POST("/register", limit, authHandler.Register)
		api.POST("/login", limit, authHandler.Login)
		api.POST("/refresh", limit, authHandler.Refresh)
		api.POST("/logout", authHandler.Logout)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(a.jwtService))
		{
			protected.GET("/me", authHandler.Me)
		}
	}

	return r
}

func (a *App) Run() error {
	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Auth service starting on port %s", a.cfg.ServerPort)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down auth service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	a.log.Info("Auth service exited")
	return nil
}
