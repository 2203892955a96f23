package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/authclient"
	"premier-open-group/pkg/cache"
	"premier-open-group/pkg/config"
	"premier-open-group/pkg/database"
	"premier-open-group/pkg/jwt"
	"premier-open-group/pkg/logger"
	"premier-open-group/pkg/metrics"
	"premier-open-group/pkg/middleware"
	"premier-open-group/pkg/queue"
	"premier-open-group/pkg/s3"
	portalHTTP "premier-open-group/services/portal/internal/controller/http"
	portalcache "premier-open-group/services/portal/internal/repo/cache"
	"premier-open-group/services/portal/internal/repo/persistent"
	"premier-open-group/services/portal/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "premier-open-group/services/portal/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	queueClient *queue.Client
	jwtService  *jwt.Service
	authClient  *authclient.Client
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
		log.Error("Failed to connect to redis: %v (continuing without cache and rate limits)", err)
		redisClient = nil
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v (status changes will not be announced)", err)
		queueClient = nil
	}

	jwtService := jwt.NewService(cfg.JWTSecret).WithTTL(cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		queueClient: queueClient,
		jwtService:  jwtService,
		authClient:  authclient.New(cfg.AuthServiceURL, cfg.PortalAPIKey, 10*time.Second),
		metrics:     metrics.New("portal"),
	}, nil
}

// publisher keeps the interface nil when there is no broker.
func (a *App) publisher() usecase.StatusPublisher {
	if a.queueClient == nil {
		return nil
	}
	return a.queueClient
}

// Router wires the pages and the JSON API.
func (a *App) Router() (*gin.Engine, error) {
	contentRepo := persistent.NewContentRepository(a.db)
	profileRepo := persistent.NewProfileRepository(a.db)
	memberRepo := persistent.NewMemberRepository(a.db)
	registrationRepo := persistent.NewRegistrationRepository(a.db)

	contentCache := portalcache.NewContentCache(a.redisClient, a.cfg.ContentCacheTTL)
	profileCache := portalcache.NewProfileCache(a.redisClient, 0)

	contentUseCase := usecase.NewContentUseCase(contentRepo, contentCache, a.log)
	profileUseCase := usecase.NewProfileUseCase(profileRepo, profileCache, a.publisher(), a.log)
	memberUseCase := usecase.NewMemberUseCase(memberRepo, profileUseCase, contentUseCase, a.log)
	registrationUseCase := usecase.NewRegistrationUseCase(registrationRepo, a.log)
	uploadUseCase := usecase.NewUploadUseCase(a.s3Client, contentRepo, contentCache, a.log)

	contentHandler := portalHTTP.NewContentHandler(contentUseCase, a.log)
	uploadHandler := portalHTTP.NewUploadHandler(uploadUseCase, a.log)
	profileHandler := portalHTTP.NewProfileHandler(profileUseCase, a.log)
	memberHandler := portalHTTP.NewMemberHandler(memberUseCase, a.log)
	registrationHandler := portalHTTP.NewRegistrationHandler(registrationUseCase, a.log)
	pageHandler := portalHTTP.NewPageHandler(contentUseCase, memberUseCase, profileUseCase, registrationUseCase, a.authClient,
		portalHTTP.PageOptions{
			SecureCookie: a.cfg.CookieSecure,
			RefreshTTL:   a.cfg.RefreshTokenTTL,
			ClientKey:    a.cfg.PortalAPIKey,
		}, a.log)

	templates, err := portalHTTP.LoadTemplates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), a.metrics.Middleware())
	r.SetHTMLTemplate(templates)
	r.MaxMultipartMemory = 32 << 20

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
	r.StaticFS("/static", portalHTTP.StaticFiles())

	formLimit := middleware.RateLimitMiddleware(a.redisClient, 5, time.Minute)
	loginLimit := middleware.RateLimitMiddleware(a.redisClient, 10, time.Minute)

	pageGate := middleware.PageGate(a.jwtService, profileUseCase, a.log)
	pages := r.Group("", pageGate)
	{
		pages.GET("/", pageHandler.Home)
		pages.GET("/home", pageHandler.Home)
		pages.GET("/about", pageHandler.About)
		pages.GET("/programs", pageHandler.Programs)
		pages.GET("/awards", pageHandler.Awards)
		pages.GET("/news", pageHandler.News)
		pages.GET("/news/:slug", pageHandler.Post)
		pages.GET("/gallery", pageHandler.Gallery)
		pages.GET("/contact", pageHandler.Contact)
		pages.POST("/contact", formLimit, pageHandler.SubmitContact)
		pages.GET("/register", pageHandler.Register)
		pages.POST("/register", formLimit, pageHandler.SubmitRegistration)
		pages.GET(access.PathLogin, pageHandler.Login)
		pages.POST(access.PathLogin, loginLimit, pageHandler.SubmitLogin)
		pages.POST("/logout", pageHandler.Logout)
		pages.GET(access.PathPendingApproval, pageHandler.PendingApproval)
		pages.GET(access.PathMemberHome, pageHandler.Member)
		pages.GET("/admin", pageHandler.Admin)
	}
	r.NoRoute(pageGate, pageHandler.NotFound)

	api := r.Group("/api/v1")
	api.Use(middleware.ClientKey(a.cfg.PortalAPIKey))
	{
		api.GET("/content/:type", contentHandler.List)
		api.GET("/content/:type/:id", contentHandler.Get)
		api.POST("/registrations", formLimit, registrationHandler.Submit)
		api.POST("/contact", formLimit, registrationHandler.SubmitInquiry)

		// Own profile is readable while approval is pending.
		profile := api.Group("/me")
		profile.Use(middleware.AuthMiddleware(a.jwtService))
		{
			profile.GET("/profile", profileHandler.GetMe)
			profile.PUT("/profile", profileHandler.UpdateMe)
		}

		me := api.Group("/me")
		me.Use(middleware.APIGate(a.jwtService, profileUseCase, a.log, access.Authenticated))
		{
			me.GET("/dashboard", memberHandler.Dashboard)
			me.GET("/progress", memberHandler.GetProgress)
			me.GET("/notifications", memberHandler.ListNotifications)
			me.PUT("/notifications/:id/read", memberHandler.MarkRead)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.APIGate(a.jwtService, profileUseCase, a.log, access.AdminOnly))
		{
			admin.GET("/schemas", contentHandler.Schemas)
			admin.GET("/content/:type", contentHandler.AdminList)
			admin.POST("/content/:type", contentHandler.Create)
			admin.PUT("/content/:type/:id", contentHandler.Update)
			admin.DELETE("/content/:type/:id", contentHandler.Delete)

			admin.POST("/uploads/:bucket", uploadHandler.Upload)
			admin.POST("/gallery/batch", uploadHandler.CommitGallery)

			admin.GET("/users", profileHandler.ListUsers)
			admin.PUT("/users/:id/status", profileHandler.SetStatus)
			admin.PUT("/users/:id/role", profileHandler.SetRole)
			admin.DELETE("/users/:id", profileHandler.DeleteUser)

			admin.GET("/progress", memberHandler.ListProgress)
			admin.PUT("/users/:id/progress", memberHandler.SetProgress)
			admin.POST("/users/:id/notifications", memberHandler.SendNotification)

			admin.GET("/registrations", registrationHandler.List)
			admin.DELETE("/registrations/:id", registrationHandler.Delete)
			admin.GET("/inquiries", registrationHandler.ListInquiries)
			admin.DELETE("/inquiries/:id", registrationHandler.DeleteInquiry)
		}
	}

	return r, nil
}

func (a *App) Run() error {
	router, err := a.Router()
	if err != nil {
		return err
	}

	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Portal service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down portal service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

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

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	a.log.Info("Portal service exited")
	return nil
}
