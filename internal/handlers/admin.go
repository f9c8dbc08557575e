package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/models"
)

func (h HandlerSet) ModerationQueue(c *gin.Context) {
	items, err := h.svc.Moderation.Queue(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapSlice(items, func(item models.ModerationItem) moderationResponse {
		return moderationResponse{
			Type:       string(item.Kind),
			ID:         item.ID,
			Title:      item.Title,
			Status:     item.Status,
			AuthorName: item.AuthorName,
			CreatedAt:  item.CreatedAt,
		}
	}))
}

func (h HandlerSet) DeleteGroup(c *gin.Context) {
	if err := h.svc.Groups.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}
