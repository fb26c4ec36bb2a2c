package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/dietprefs-client/config"
	"github.com/ikkim/dietprefs-client/internal/app/controller"
	apperrors "github.com/ikkim/dietprefs-client/internal/errors"
	"github.com/ikkim/dietprefs-client/internal/middleware"
	"github.com/ikkim/dietprefs-client/pkg/logger"
	"github.com/rs/cors"
)

type Router struct {
	sessionController *controller.SessionController
	configController  *controller.ConfigController
	streamController  *controller.StreamController
	config            *config.Config
}

func NewRouter(
	sessionController *controller.SessionController,
	configController *controller.ConfigController,
	streamController *controller.StreamController,
	cfg *config.Config,
) *Router {
	return &Router{
		sessionController: sessionController,
		configController:  configController,
		streamController:  streamController,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Recovered from panic", fmt.Errorf("%v", recovered), map[string]interface{}{
			"path":       c.Request.URL.Path,
			"request_id": middleware.GetRequestID(c),
		})
		apperrors.InternalError(c, "")
		c.Abort()
	}))
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "dietprefs session is running",
		})
	})

	if r.streamController != nil {
		router.GET("/ws", r.streamController.WebSocketHandler)
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/config", r.configController.GetConfig)
		v1.POST("/config/refresh", r.configController.RefreshConfig)
		v1.GET("/preferences", r.sessionController.ListPreferences)

		session := v1.Group("/session")
		{
			session.GET("", r.sessionController.GetSnapshot)
			session.POST("/preferences/toggle", r.sessionController.TogglePreference)
			session.PUT("/price", r.sessionController.SetMaxPrice)
			session.POST("/clear", r.sessionController.ClearAll)
			session.PUT("/sort", r.sessionController.SetSort)
			session.PUT("/query", r.sessionController.SetQuery)
			session.POST("/search", r.sessionController.Search)
			session.POST("/next-page", r.sessionController.NextPage)
			session.PUT("/location", r.sessionController.SetLocation)
			session.POST("/location/refresh", r.sessionController.RefreshLocation)
			session.PUT("/visible-range", r.sessionController.UpdateVisibleRange)
			session.DELETE("/error", r.sessionController.ClearError)
			session.POST("/vendors/:id/open", r.sessionController.OpenVendor)
			session.GET("/detail", r.sessionController.GetDetail)
			session.PUT("/detail/selected", r.sessionController.UpdateSelectedIndex)
			session.POST("/items/:id/vote", r.sessionController.Vote)
			session.GET("/export.xlsx", r.sessionController.Export)
		}
	}

	return router
}

// Handler wraps the engine with CORS handling for the configured origins.
func (r *Router) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: r.config.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Origin", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
	})
	return c.Handler(r.Setup())
}
