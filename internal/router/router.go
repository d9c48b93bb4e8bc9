package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/aischooloff-pixel/boys-hub-pr2/api"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/handler"
	"github.com/aischooloff-pixel/boys-hub-pr2/internal/metrics"
)

// New собирает gin-роутер: health/ready, /metrics, swagger и /api/v1.
func New(supportHandler *handler.SupportHandler, log zerolog.Logger) http.Handler {
	r := gin.New()

	// Любая паника в обработчике наружу уходит одним кодом server_error,
	// без текста внутренней ошибки.
	r.Use(gin.CustomRecovery(func(c *gin.Context, err interface{}) {
		log.Error().Interface("panic", err).Str("path", c.Request.URL.Path).Msg("handler panic")
		metrics.SubmissionsTotal.WithLabelValues("server_error").Inc()
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
	}))

	// Mini-app живёт в webview Telegram на другом origin.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
	}))

	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/support", supportHandler.Submit)
		v1.GET("/tickets", supportHandler.List)
		v1.GET("/tickets/:id", supportHandler.Get)
	}

	return r
}
