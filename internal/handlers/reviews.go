package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/service"
)

type reviewRequest struct {
	ServiceName string `json:"serviceName" binding:"required"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Comment     string `json:"comment"`
}

func (h HandlerSet) CreateReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	review, err := h.svc.Reviews.Create(c.Request.Context(), principal(c), service.ReviewInput{
		ServiceName: req.ServiceName,
		Rating:      req.Rating,
		Comment:     req.Comment,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReview(review))
}

func (h HandlerSet) ListReviews(c *gin.Context) {
	reviews, err := h.svc.Reviews.ListApproved(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(reviews, toReview))
}

func (h HandlerSet) ApproveReview(c *gin.Context) {
	if err := h.svc.Reviews.Approve(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review approved"})
}

func (h HandlerSet) DeleteReview(c *gin.Context) {
	if err := h.svc.Reviews.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}
