package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deepflow/backend/internal/middleware"
	"deepflow/backend/internal/service"
)

type InsightHandler struct {
	insightService *service.InsightService
}

func NewInsightHandler(insightService *service.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

func (h *InsightHandler) WeeklySummary(c *gin.Context) {
	offset := 0
	if rawOffset := c.Query("offset"); rawOffset != "" {
		parsed, err := strconv.Atoi(rawOffset)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "invalid_offset", "message": "offset must be an integer"},
			})
			return
		}
		offset = parsed
	}

	userID := middleware.UserID(c)
	result, apiErr := h.insightService.WeeklySummary(c.Request.Context(), userID, offset)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
