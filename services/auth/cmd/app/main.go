package main

import (
	"premier-open-group/pkg/config"
	app "premier-open-group/services/auth/internal/app"

	"github.com/gin-gonic/gin"

	_ "premier-open-group/services/auth/docs" // Swagger docs
)

// @title           Auth Service API
// @version         1.0
// @description     Identity service for the Premier Open Group portal: sign-up, sign-in, token refresh and current session.

// @host      localhost:8001
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
