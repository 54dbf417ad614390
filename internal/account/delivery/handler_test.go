package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mailpilot-backend/internal/account/domain"
	"mailpilot-backend/internal/account/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSettingsUsecase returns canned views/errors per method
type stubSettingsUsecase struct {
	view *usecase.SettingsView
	err  error

	lastField string
	lastDays  int
}

func (s *stubSettingsUsecase) GetSettings(userID, accountID string) (*usecase.SettingsView, error) {
	return s.view, s.err
}

func (s *stubSettingsUsecase) UpdateSyncMode(_ context.Context, _, _ string, mode string) (*usecase.SettingsView, error) {
	if s.err != nil {
		return nil, s.err
	}
	_, _, err := s.view.Config.ApplySyncMode(domain.SyncMode(mode))
	if err != nil {
		return nil, err
	}
	return s.view, nil
}

func (s *stubSettingsUsecase) UpdateSyncInterval(_ context.Context, _, _ string, minutes int) (*usecase.SettingsView, error) {
	if s.err != nil {
		return nil, s.err
	}
	_, _, err := s.view.Config.ApplySyncInterval(minutes)
	if err != nil {
		return nil, err
	}
	return s.view, nil
}

func (s *stubSettingsUsecase) UpdateNightMode(_ context.Context, _, _ string, _ bool) (*usecase.SettingsView, error) {
	return s.view, s.err
}

func (s *stubSettingsUsecase) UpdateBatterySaver(_ context.Context, _, _ string, _ bool) (*usecase.SettingsView, error) {
	return s.view, s.err
}

func (s *stubSettingsUsecase) UpdateIntervalDays(_ context.Context, _, _, field string, days int) (*usecase.SettingsView, error) {
	if s.err != nil {
		return nil, s.err
	}
	parsed, err := domain.ParseIntervalDaysField(field)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.view.Config.ApplyIntervalDays(parsed, days); err != nil {
		return nil, err
	}
	s.lastField = field
	s.lastDays = days
	return s.view, nil
}

func defaultView() *usecase.SettingsView {
	cfg := domain.SyncConfig{
		AccountID:           "acct-1",
		Type:                domain.AccountTypeExchange,
		Mode:                domain.SyncModePush,
		SyncIntervalMinutes: 15,
	}
	return &usecase.SettingsView{
		Config:             cfg,
		IntervalApplicable: cfg.IntervalApplicable(),
		AccountTypeLabel:   cfg.Type.Label(),
		SyncModeLabel:      cfg.Mode.Label(),
	}
}

func setupRouter(stub *stubSettingsUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Next()
	})

	h := NewAccountHandler(nil, stub)
	r.GET("/api/accounts/:id/sync-settings", h.GetSyncSettings)
	r.PUT("/api/accounts/:id/sync-settings/mode", h.UpdateSyncMode)
	r.PUT("/api/accounts/:id/sync-settings/interval", h.UpdateSyncInterval)
	r.PUT("/api/accounts/:id/sync-settings/night-mode", h.UpdateNightMode)
	r.PUT("/api/accounts/:id/sync-settings/days/:field", h.UpdateIntervalDays)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSyncSettings(t *testing.T) {
	r := setupRouter(&stubSettingsUsecase{view: defaultView()})

	w := doJSON(t, r, http.MethodGet, "/api/accounts/acct-1/sync-settings", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var resp usecase.SettingsView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.SyncModePush, resp.Config.Mode)
	assert.False(t, resp.IntervalApplicable)
	assert.Equal(t, "Push", resp.SyncModeLabel)
}

func TestGetSyncSettingsNotFound(t *testing.T) {
	r := setupRouter(&stubSettingsUsecase{err: usecase.ErrAccountNotFound})

	w := doJSON(t, r, http.MethodGet, "/api/accounts/missing/sync-settings", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSyncSettingsForbidden(t *testing.T) {
	r := setupRouter(&stubSettingsUsecase{err: usecase.ErrNotOwner})

	w := doJSON(t, r, http.MethodGet, "/api/accounts/acct-1/sync-settings", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateSyncModeValidation(t *testing.T) {
	r := setupRouter(&stubSettingsUsecase{view: defaultView()})

	// missing body
	w := doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/mode", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown enum value
	w = doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/mode",
		map[string]string{"sync_mode": "telegraph"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// valid switch
	w = doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/mode",
		map[string]string{"sync_mode": "scheduled"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateSyncIntervalValidation(t *testing.T) {
	r := setupRouter(&stubSettingsUsecase{view: defaultView()})

	w := doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/interval",
		map[string]int{"sync_interval_minutes": 7})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/interval",
		map[string]int{"sync_interval_minutes": 30})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateNightModeRequiresEnabled(t *testing.T) {
	r := setupRouter(&stubSettingsUsecase{view: defaultView()})

	w := doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/night-mode",
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// false is a valid value, not a missing one
	w = doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/night-mode",
		map[string]bool{"enabled": false})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateIntervalDays(t *testing.T) {
	stub := &stubSettingsUsecase{view: defaultView()}
	r := setupRouter(stub)

	w := doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/days/cleanup_trash",
		map[string]int{"days": 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cleanup_trash", stub.lastField)
	assert.Equal(t, 30, stub.lastDays)

	// negative day count
	w = doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/days/contacts",
		map[string]int{"days": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// unknown field
	w = doJSON(t, r, http.MethodPut, "/api/accounts/acct-1/sync-settings/days/ringtone",
		map[string]int{"days": 3})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
