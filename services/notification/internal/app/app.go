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
	"premier-open-group/pkg/queue"
	notificationHTTP "premier-open-group/services/notification/internal/controller/http"
	livecache "premier-open-group/services/notification/internal/repo/cache"
	"premier-open-group/services/notification/internal/repo/persistent"
	"premier-open-group/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const handleTimeout = 10 * time.Second

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	queueClient *queue.Client
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
		log.Error("Failed to connect to redis: %v (continuing without live notifications)", err)
		redisClient = nil
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		return nil, err
	}

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		queueClient: queueClient,
		jwtService:  jwt.NewService(cfg.JWTSecret),
		metrics:     metrics.New("notification"),
	}, nil
}

func (a *App) Run() error {
	feed := livecache.NewLiveFeed(a.redisClient)
	notificationRepo := persistent.NewNotificationRepository(a.db)
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, feed, a.log)
	notificationHandler := notificationHTTP.NewNotificationHandler(feed, a.jwtService, a.cfg.CORSOrigins, a.log)

	err := a.queueClient.ConsumeMemberStatusTasks(func(task queue.MemberStatusTask) error {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()
		return notificationUseCase.HandleStatusChange(ctx, task)
	})
	if err != nil {
		a.log.Error("Error starting member status consumer: %v", err)
		return err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), a.metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		length, err := a.queueClient.GetQueueLength()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "queue unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "queue_length": length, "live": feed.Enabled()})
	})
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	api := r.Group("/api/v1")
	api.GET("/notifications/ws", notificationHandler.HandleWebSocket)

	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Notification service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down notification service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	// Closing the channel stops the consumer loop.
	if err := a.queueClient.Close(); err != nil {
		a.log.Error("Error closing RabbitMQ: %v", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Notification service exited")
	return nil
}
