package main

import (
	"premier-open-group/pkg/config"
	app "premier-open-group/services/portal/internal/app"

	"github.com/gin-gonic/gin"

	_ "premier-open-group/services/portal/docs" // Swagger docs
)

// @title           Portal Service API
// @version         1.0
// @description     Premier Open Group portal: public content, forms, member area and administration.

// @host      localhost:8002
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.HasDefaultSecret() {
		panic("JWT_SECRET must be set in environment variables")
	}

	gin.SetMode(gin.ReleaseMode)

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
