package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "taxigest/internal/errors"
	"taxigest/internal/services"
)

// SettingHandler handles the key/value configuration store requests.
type SettingHandler struct {
	settingService services.SettingServicer
	auditService   services.AuditServicer
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settingService services.SettingServicer, auditService services.AuditServicer) *SettingHandler {
	return &SettingHandler{settingService: settingService, auditService: auditService}
}

// SetSettingRequest represents the request payload for storing a setting.
type SetSettingRequest struct {
	Value string `json:"value" binding:"required,max=255"`
}

// GetSettings handles the listing of all stored settings plus the effective
// payroll defaults
// @Summary     List settings
// @Description Get all stored settings and the effective payroll defaults
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [get]
func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingService.All()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
		"effective": gin.H{
			"driver_base_salary":     h.settingService.DriverBaseSalary(),
			"driver_commission_rate": h.settingService.DriverCommissionRate(),
			"commission_mode":        h.settingService.DefaultCommissionMode(),
		},
	})
}

// GetSetting handles the retrieval of a single setting
// @Summary     Get a setting
// @Description Get a stored setting by key
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key path string true "Setting key"
// @Success     200 {object} models.Setting "Setting"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Setting not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/{key} [get]
func (h *SettingHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")

	value, err := h.settingService.Get(key)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// SetSetting handles the creation or update of a setting
// @Summary     Store a setting
// @Description Create or update a setting; numeric keys are validated
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key     path string            true "Setting key"
// @Param       request body SetSettingRequest true "Setting value"
// @Success     200 {object} models.Setting "Setting stored"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/{key} [put]
func (h *SettingHandler) SetSetting(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	key := c.Param("key")

	var req SetSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	setting, err := h.settingService.Set(key, req.Value)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SET_SETTING", "setting", setting.ID, c.ClientIP(),
		map[string]interface{}{"key": key, "value": req.Value})

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}
