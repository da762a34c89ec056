package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deepflow/backend/internal/middleware"
	"deepflow/backend/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) Export(c *gin.Context) {
	userID := middleware.UserID(c)
	export, apiErr := h.accountService.ExportData(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, export)
}

func (h *AccountHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.accountService.DeleteAccount(c.Request.Context(), userID); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
