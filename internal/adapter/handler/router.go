package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/voice-guard/internal/adapter/dto/analysis"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	analysisHandler *Analysis
	auth            echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers. auth may be nil, which
// leaves the API open.
func NewRouter(cfg *config.Config, analysisHandler *Analysis, auth echo.MiddlewareFunc) *Router {
	return &Router{
		cfg:             cfg,
		analysisHandler: analysisHandler,
		auth:            auth,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")
	if rt.auth != nil {
		v1.Use(rt.auth)
	}

	rt.setupAnalysisRoutes(v1)
}

// setupAnalysisRoutes configures analysis routes
func (rt *Router) setupAnalysisRoutes(g *echo.Group) {
	if rt.analysisHandler == nil {
		g.POST("/analyze/voice-call", rt.notImplemented)
		g.POST("/analyze/text", rt.notImplemented)
		g.POST("/detect/spoof", rt.notImplemented)
		g.GET("/analyses", rt.notImplemented)
		g.GET("/analyses/:id", rt.notImplemented)
		g.GET("/stats", rt.notImplemented)
		return
	}

	g.POST("/analyze/voice-call", rt.analysisHandler.AnalyzeVoiceCall)
	g.POST("/analyze/text", rt.analysisHandler.AnalyzeText)
	g.POST("/detect/spoof", rt.analysisHandler.DetectSpoof)
	g.GET("/analyses", rt.analysisHandler.ListAnalyses)
	g.GET("/analyses/:id", rt.analysisHandler.GetAnalysis)
	g.GET("/stats", rt.analysisHandler.Stats)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns component availability
// @Summary      Health check
// @Description  Reports which pipeline components and backing services are available
// @Tags         Health
// @Produce      json
// @Success      200  {object}  analysis.HealthResponse
// @Router       /health [get]
func (rt *Router) healthCheck(c echo.Context) error {
	resp := analysis.HealthResponse{
		Status:     "ok",
		Components: map[string]bool{},
	}
	if rt.cfg != nil {
		resp.Environment = rt.cfg.Server.Environment
	}

	if rt.analysisHandler != nil {
		resp.Components = rt.analysisHandler.svc.Health(c.Request().Context())
		for _, up := range resp.Components {
			if !up {
				resp.Status = "degraded"
				break
			}
		}
	} else {
		resp.Status = "degraded"
	}

	return c.JSON(http.StatusOK, resp)
}
