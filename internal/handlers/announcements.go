package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/service"
)

type announcementRequest struct {
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message" binding:"required"`
	Priority string `json:"priority" binding:"omitempty,announcement_priority"`
}

func (h HandlerSet) ListAnnouncements(c *gin.Context) {
	announcements, err := h.svc.Announcements.Recent(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(announcements, toAnnouncement))
}

func (h HandlerSet) CreateAnnouncement(c *gin.Context) {
	var req announcementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	announcement, err := h.svc.Announcements.Create(c.Request.Context(), principal(c), service.AnnouncementInput{
		Title:    req.Title,
		Message:  req.Message,
		Priority: req.Priority,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAnnouncement(announcement))
}

func (h HandlerSet) DeleteAnnouncement(c *gin.Context) {
	if err := h.svc.Announcements.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "announcement deleted"})
}
