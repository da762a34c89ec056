package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deepflow/backend/internal/middleware"
	"deepflow/backend/internal/service"
)

type ShelfHandler struct {
	shelfService *service.ShelfService
}

type addShelfItemRequest struct {
	Text string `json:"text"`
}

func NewShelfHandler(shelfService *service.ShelfService) *ShelfHandler {
	return &ShelfHandler{shelfService: shelfService}
}

func (h *ShelfHandler) Add(c *gin.Context) {
	var req addShelfItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	item, apiErr := h.shelfService.Add(c.Request.Context(), userID, req.Text)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item": item})
}

func (h *ShelfHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	items, apiErr := h.shelfService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ShelfHandler) Remove(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.shelfService.Remove(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
