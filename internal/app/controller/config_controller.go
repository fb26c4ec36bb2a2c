package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/dietprefs-client/internal/app/service"
	apperrors "github.com/ikkim/dietprefs-client/internal/errors"
	"github.com/ikkim/dietprefs-client/internal/middleware"
)

type ConfigController struct {
	configService service.ConfigService
}

func NewConfigController(configService service.ConfigService) *ConfigController {
	return &ConfigController{configService: configService}
}

// GetConfig returns the business configuration in use and where it came from
// GET /api/v1/config
func (ctrl *ConfigController) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"config":        ctrl.configService.AppConfig(),
		"price_options": ctrl.configService.PriceOptions(),
		"source":        ctrl.configService.Source(),
	})
}

// RefreshConfig reloads config and preference labels from the backend
// POST /api/v1/config/refresh
func (ctrl *ConfigController) RefreshConfig(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.configService.Refresh(c.Request.Context()); err != nil {
		log.Warn("Config refresh failed", map[string]interface{}{
			"error":  err.Error(),
			"source": ctrl.configService.Source(),
		})
		apperrors.RespondWithParsedError(c, err, "config")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"config": ctrl.configService.AppConfig(),
		"source": ctrl.configService.Source(),
	})
}
