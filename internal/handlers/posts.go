package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type postRequest struct {
	Content string `form:"content" json:"content" binding:"required"`
}

type commentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

func (h HandlerSet) CreatePost(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	image, err := h.saveImage(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	post, err := h.svc.Posts.Create(c.Request.Context(), principal(c), req.Content, image)
	if err != nil {
		h.svc.Uploads.Discard(c.Request.Context(), image)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPost(post))
}

func (h HandlerSet) ListPosts(c *gin.Context) {
	posts, err := h.svc.Posts.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(posts, toPost))
}

func (h HandlerSet) DeletePost(c *gin.Context) {
	if err := h.svc.Posts.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

func (h HandlerSet) LikePost(c *gin.Context) {
	likes, err := h.svc.Posts.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

func (h HandlerSet) ToggleSupport(c *gin.Context) {
	supported, err := h.svc.Posts.ToggleSupport(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := "unsupported"
	if supported {
		status = "supported"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h HandlerSet) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	comment, err := h.svc.Posts.AddComment(c.Request.Context(), principal(c), c.Param("id"), req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toComment(comment))
}

func (h HandlerSet) ListComments(c *gin.Context) {
	comments, err := h.svc.Posts.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(comments, toComment))
}
