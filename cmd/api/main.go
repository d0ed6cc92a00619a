package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/voice-guard/pkg/validator"

	"github.com/johnquangdev/voice-guard/internal/adapter/handler"
	"github.com/johnquangdev/voice-guard/internal/app"
	httpmw "github.com/johnquangdev/voice-guard/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/voice-guard/pkg/config"
	"github.com/johnquangdev/voice-guard/pkg/jwt"
)

// @title           Voice Guard API
// @version         1.0
// @description     Scores recorded voice calls for scam, voice-spoofing and bot risk.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a service token from `callguard token`.

//go:generate swag init -g main.go -d ./,../../internal/adapter/handler,../../internal/adapter/dto/analysis,../../internal/domain/entities -o ../../docs

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// Reject bodies well past the audio cap before reading them; base64
	// inflates audio by a third
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.Analysis.MaxUploadBytes*3/2/1024)))

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 2*time.Minute)
	application, err := app.Build(startCtx, cfg, logger, app.Options{
		WaitForModels: true,
		Persistence:   true,
	})
	cancelStart()
	if err != nil {
		log.Fatalf("Failed to initialize analysis pipeline: %v", err)
	}
	defer application.Close()

	analysisHandler := handler.NewAnalysis(application.Service, cfg.Analysis.MaxUploadBytes, logger)

	// Optional bearer auth with service tokens
	var authMW echo.MiddlewareFunc
	if cfg.JWT.Enabled {
		log.Println("🔑 Initializing JWT manager...")
		jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
		authMW = httpmw.EchoAuth(jwtManager, logger)
	} else {
		log.Println("⚠️  AUTH_ENABLED=false, /v1 is open")
	}

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, analysisHandler, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
