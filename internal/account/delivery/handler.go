package delivery

import (
	"errors"
	"net/http"

	"mailpilot-backend/internal/account/domain"
	"mailpilot-backend/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles mail account and sync-settings HTTP requests
type AccountHandler struct {
	accountUsecase  usecase.AccountManagementUsecase
	settingsUsecase usecase.SyncSettingsUsecase
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountUsecase usecase.AccountManagementUsecase, settingsUsecase usecase.SyncSettingsUsecase) *AccountHandler {
	return &AccountHandler{
		accountUsecase:  accountUsecase,
		settingsUsecase: settingsUsecase,
	}
}

// UpdateSyncModeRequest represents the request body for switching sync mode
type UpdateSyncModeRequest struct {
	SyncMode string `json:"sync_mode" binding:"required"`
}

// UpdateSyncIntervalRequest represents the request body for the polling interval
type UpdateSyncIntervalRequest struct {
	SyncIntervalMinutes int `json:"sync_interval_minutes" binding:"required"`
}

// UpdateToggleRequest represents a boolean settings change
type UpdateToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// UpdateIntervalDaysRequest represents a day-count settings change
type UpdateIntervalDaysRequest struct {
	Days *int `json:"days" binding:"required"`
}

// respondSettingsError maps usecase/domain errors onto HTTP statuses
func respondSettingsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
	case errors.Is(err, usecase.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrInvalidEnumValue), errors.Is(err, domain.ErrInvalidRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetAccounts returns all mail accounts for the authenticated user
// GET /api/accounts
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	userID := c.GetString("userID")

	accounts, err := h.accountUsecase.ListAccounts(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"total":    len(accounts),
	})
}

// CreateAccount registers a new mail account
// POST /api/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID := c.GetString("userID")

	var req usecase.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountUsecase.CreateAccount(c.Request.Context(), userID, req)
	if err != nil {
		if err.Error() == "account already registered" {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, account)
}

// DeleteAccount removes a mail account and its sync configuration
// DELETE /api/accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")

	if err := h.accountUsecase.DeleteAccount(c.Request.Context(), userID, accountID); err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// GetSyncSettings returns the validated sync settings view for an account
// GET /api/accounts/:id/sync-settings
func (h *AccountHandler) GetSyncSettings(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")

	view, err := h.settingsUsecase.GetSettings(userID, accountID)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateSyncMode switches an account between push and scheduled delivery
// PUT /api/accounts/:id/sync-settings/mode
func (h *AccountHandler) UpdateSyncMode(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")

	var req UpdateSyncModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.settingsUsecase.UpdateSyncMode(c.Request.Context(), userID, accountID, req.SyncMode)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateSyncInterval changes the polling interval
// PUT /api/accounts/:id/sync-settings/interval
func (h *AccountHandler) UpdateSyncInterval(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")

	var req UpdateSyncIntervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.settingsUsecase.UpdateSyncInterval(c.Request.Context(), userID, accountID, req.SyncIntervalMinutes)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateNightMode toggles the overnight scheduling policy
// PUT /api/accounts/:id/sync-settings/night-mode
func (h *AccountHandler) UpdateNightMode(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")

	var req UpdateToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.settingsUsecase.UpdateNightMode(c.Request.Context(), userID, accountID, *req.Enabled)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateBatterySaver toggles the low-power override
// PUT /api/accounts/:id/sync-settings/battery-saver
func (h *AccountHandler) UpdateBatterySaver(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")

	var req UpdateToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.settingsUsecase.UpdateBatterySaver(c.Request.Context(), userID, accountID, *req.Enabled)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateIntervalDays changes a groupware-sync or cleanup retention setting
// PUT /api/accounts/:id/sync-settings/days/:field
func (h *AccountHandler) UpdateIntervalDays(c *gin.Context) {
	userID := c.GetString("userID")
	accountID := c.Param("id")
	field := c.Param("field")

	var req UpdateIntervalDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.settingsUsecase.UpdateIntervalDays(c.Request.Context(), userID, accountID, field, *req.Days)
	if err != nil {
		respondSettingsError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
