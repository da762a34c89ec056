package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deepflow/backend/internal/middleware"
	"deepflow/backend/internal/service"
)

type TimerHandler struct {
	timerService *service.TimerService
}

type createTimerRequest struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

type actionRequest struct {
	Action string `json:"action"`
}

func NewTimerHandler(timerService *service.TimerService) *TimerHandler {
	return &TimerHandler{timerService: timerService}
}

func (h *TimerHandler) Create(c *gin.Context) {
	var req createTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	timer, apiErr := h.timerService.Create(c.Request.Context(), userID, req.Name, req.DurationMinutes)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"timer": timer})
}

func (h *TimerHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	timers, apiErr := h.timerService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timers": timers})
}

func (h *TimerHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.timerService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *TimerHandler) ApplyAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	state, apiErr := h.timerService.ApplyAction(c.Request.Context(), userID, c.Param("id"), req.Action)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) GetState(c *gin.Context) {
	userID := middleware.UserID(c)
	state, apiErr := h.timerService.GetState(c.Request.Context(), userID, c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}
