package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/models"
)

type groupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type messageRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h HandlerSet) ListGroups(c *gin.Context) {
	groups, err := h.svc.Groups.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(groups, toGroup))
}

func (h HandlerSet) CreateGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	group, err := h.svc.Groups.Create(c.Request.Context(), principal(c), req.Name, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toGroup(group))
}

// JoinGroup succeeds for existing members too; alreadyMember tells the
// two cases apart.
func (h HandlerSet) JoinGroup(c *gin.Context) {
	result, err := h.svc.Groups.Join(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	message := "joined group"
	if result.AlreadyMember {
		message = "already a member"
	}
	c.JSON(http.StatusOK, gin.H{
		"groupId":       result.GroupID,
		"alreadyMember": result.AlreadyMember,
		"message":       message,
	})
}

func (h HandlerSet) ListMessages(c *gin.Context) {
	messages, err := h.svc.Groups.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(messages, toMessage))
}

func (h HandlerSet) PostMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	msg, err := h.svc.Groups.PostMessage(c.Request.Context(), principal(c), c.Param("id"), req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessage(msg))
}

func (h HandlerSet) ListMembers(c *gin.Context) {
	members, err := h.svc.Groups.Members(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(members, func(m models.Member) memberResponse {
		return memberResponse{UserID: m.UserID, Name: m.Name, JoinedAt: m.JoinedAt}
	}))
}
