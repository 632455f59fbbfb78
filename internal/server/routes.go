package server

import (
	"html/template"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers middleware and every route on engine.
func SetupRoutes(engine *gin.Engine, h *Handler, logger *slog.Logger) {
	engine.Use(gin.Recovery())
	engine.Use(LoggingMiddleware(&LoggingConfig{
		SkipPaths: []string{"/health"},
		Logger:    logger,
	}))
	engine.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	engine.GET("/", h.Index)
	engine.POST("/classify_text", h.ClassifyText)
	engine.POST("/classify_file", h.ClassifyFile)
	engine.GET("/health", h.Health)

	v1 := engine.Group("/v1")
	v1.POST("/classify", h.Classify)
	v1.POST("/classify/batch", h.ClassifyBatch)
	v1.GET("/taxonomy", h.Taxonomy)
}
