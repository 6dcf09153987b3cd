package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suphotsudsee/study-leave-web/internal/store"
)

type settingsRequest struct {
	DueWindowDays *int `json:"due_window_days" binding:"omitempty,min=1,max=3650"`
}

// GetSettings returns the effective runtime settings.
// GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"due_window_days": h.dueWindow(c.Request.Context()),
	}})
}

// UpdateSettings stores runtime settings.
// PATCH /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}
	if req.DueWindowDays != nil {
		if err := h.store.SetSetting(c.Request.Context(), store.SettingDueWindowDays, strconv.Itoa(*req.DueWindowDays)); err != nil {
			databaseError(c, err)
			return
		}
	}
	h.GetSettings(c)
}
