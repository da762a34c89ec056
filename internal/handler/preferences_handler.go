package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deepflow/backend/internal/middleware"
	"deepflow/backend/internal/service"
)

type PreferencesHandler struct {
	prefsService *service.PreferencesService
}

type updatePreferencesRequest struct {
	EnableStartCheckin bool   `json:"enableStartCheckin"`
	EnableMidCheckin   bool   `json:"enableMidCheckin"`
	EnableEndCheckin   bool   `json:"enableEndCheckin"`
	EnableEnergyLog    bool   `json:"enableEnergyLog"`
	EnableSound        bool   `json:"enableSound"`
	Country            string `json:"country"`
	Region             string `json:"region"`
}

func NewPreferencesHandler(prefsService *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefsService: prefsService}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	prefs, apiErr := h.prefsService.Get(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func (h *PreferencesHandler) Update(c *gin.Context) {
	var req updatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	prefs, apiErr := h.prefsService.Update(c.Request.Context(), userID, service.UpdatePreferencesInput{
		EnableStartCheckin: req.EnableStartCheckin,
		EnableMidCheckin:   req.EnableMidCheckin,
		EnableEndCheckin:   req.EnableEndCheckin,
		EnableEnergyLog:    req.EnableEnergyLog,
		EnableSound:        req.EnableSound,
		Country:            req.Country,
		Region:             req.Region,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
