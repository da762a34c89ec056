package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deepflow/backend/internal/middleware"
	"deepflow/backend/internal/service"
)

type EnergyHandler struct {
	energyService *service.EnergyService
}

type logSampleRequest struct {
	TimerID    string `json:"timerId"`
	Stage      string `json:"stage"`
	Level      int    `json:"level"`
	FocusLevel *int   `json:"focusLevel"`
}

type saveInsightRequest struct {
	OverallEnergy   int    `json:"overallEnergy"`
	MotivationLevel int    `json:"motivationLevel"`
	FocusClarity    int    `json:"focusClarity"`
	PhysicalEnergy  int    `json:"physicalEnergy"`
	MoodState       string `json:"moodState"`
	EnergySource    string `json:"energySource"`
	EnergyDrains    string `json:"energyDrains"`
	Notes           string `json:"notes"`
}

func NewEnergyHandler(energyService *service.EnergyService) *EnergyHandler {
	return &EnergyHandler{energyService: energyService}
}

func (h *EnergyHandler) LogSample(c *gin.Context) {
	var req logSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	sample, apiErr := h.energyService.LogSample(c.Request.Context(), userID, service.LogSampleInput{
		TimerID:    req.TimerID,
		Stage:      req.Stage,
		Level:      req.Level,
		FocusLevel: req.FocusLevel,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sample": sample})
}

func (h *EnergyHandler) ListSamples(c *gin.Context) {
	userID := middleware.UserID(c)
	samples, apiErr := h.energyService.ListSamples(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

func (h *EnergyHandler) SaveInsight(c *gin.Context) {
	var req saveInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	insight, apiErr := h.energyService.SaveInsight(c.Request.Context(), userID, service.SaveInsightInput{
		OverallEnergy:   req.OverallEnergy,
		MotivationLevel: req.MotivationLevel,
		FocusClarity:    req.FocusClarity,
		PhysicalEnergy:  req.PhysicalEnergy,
		MoodState:       req.MoodState,
		EnergySource:    req.EnergySource,
		EnergyDrains:    req.EnergyDrains,
		Notes:           req.Notes,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"insight": insight})
}

func (h *EnergyHandler) ListInsights(c *gin.Context) {
	limit := 10
	if rawLimit := c.Query("limit"); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil {
			limit = parsed
		}
	}

	userID := middleware.UserID(c)
	insights, apiErr := h.energyService.ListInsights(c.Request.Context(), userID, limit)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}
