package api

import (
	"net/http"
	"sync"

	"mailpilot-backend/internal/sync/scheduler"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable scheduler settings
type RuntimeConfig struct {
	LowPowerMode   bool `json:"low_power_mode"`
	NightStartHour int  `json:"night_start_hour"`
	NightEndHour   int  `json:"night_end_hour"`
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(lowPowerMode bool, nightStartHour, nightEndHour int) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		LowPowerMode:   lowPowerMode,
		NightStartHour: nightStartHour,
		NightEndHour:   nightEndHour,
	}
}

// GetRuntimeLowPowerMode returns the current server low-power flag
func GetRuntimeLowPowerMode() bool {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.LowPowerMode
}

// GetRuntimeNightWindow returns the current night window
func GetRuntimeNightWindow() scheduler.NightWindow {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return scheduler.NightWindow{
		StartHour: runtimeConfig.NightStartHour,
		EndHour:   runtimeConfig.NightEndHour,
	}
}

// UpdateRuntimeSettingsRequest represents the request body for updating
// scheduler runtime settings
type UpdateRuntimeSettingsRequest struct {
	LowPowerMode   *bool `json:"low_power_mode"`
	NightStartHour *int  `json:"night_start_hour"`
	NightEndHour   *int  `json:"night_end_hour"`
}

// GetRuntimeSettings returns the current scheduler runtime settings
// GET /api/settings/runtime
func GetRuntimeSettings(c *gin.Context) {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()

	c.JSON(http.StatusOK, runtimeConfig)
}

// UpdateRuntimeSettings updates scheduler runtime settings without a restart
// PUT /api/settings/runtime
func UpdateRuntimeSettings(c *gin.Context) {
	var req UpdateRuntimeSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NightStartHour != nil && (*req.NightStartHour < 0 || *req.NightStartHour > 23) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "night_start_hour must be between 0 and 23"})
		return
	}
	if req.NightEndHour != nil && (*req.NightEndHour < 0 || *req.NightEndHour > 23) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "night_end_hour must be between 0 and 23"})
		return
	}

	runtimeConfigLock.Lock()
	if req.LowPowerMode != nil {
		runtimeConfig.LowPowerMode = *req.LowPowerMode
	}
	if req.NightStartHour != nil {
		runtimeConfig.NightStartHour = *req.NightStartHour
	}
	if req.NightEndHour != nil {
		runtimeConfig.NightEndHour = *req.NightEndHour
	}
	updated := runtimeConfig
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, updated)
}
