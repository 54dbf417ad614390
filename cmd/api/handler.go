package api

import (
	accountDelivery "mailpilot-backend/internal/account/delivery"
	accountUsecasePkg "mailpilot-backend/internal/account/usecase"
	"mailpilot-backend/internal/auth/delivery"
	authUsecasePkg "mailpilot-backend/internal/auth/usecase"
	"mailpilot-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authUsecasePkg.AuthUsecase
	authHandler    *delivery.AuthHandler
	accountHandler *accountDelivery.AccountHandler
	config         *config.Config
}

func NewHandler(authUc authUsecasePkg.AuthUsecase, accountUc accountUsecasePkg.AccountManagementUsecase, settingsUc accountUsecasePkg.SyncSettingsUsecase, cfg *config.Config) *Handler {
	// Initialize runtime config for the settings API
	InitRuntimeConfig(cfg.LowPowerMode, cfg.NightStartHour, cfg.NightEndHour)

	return &Handler{
		authUsecase:    authUc,
		authHandler:    delivery.NewAuthHandler(authUc),
		accountHandler: accountDelivery.NewAccountHandler(accountUc, settingsUc),
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.accountHandler)

	return r.Run(addr)
}
