package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/service"
)

type complaintRequest struct {
	Category    string `form:"category" json:"category" binding:"required"`
	Description string `form:"description" json:"description" binding:"required"`
	Location    string `form:"location" json:"location"`
}

type complaintStatusRequest struct {
	Status string `json:"status" binding:"required,complaint_status"`
}

func (h HandlerSet) CreateComplaint(c *gin.Context) {
	var req complaintRequest
	if err := c.ShouldBind(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	image, err := h.saveImage(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	complaint, err := h.svc.Complaints.Create(c.Request.Context(), principal(c), service.ComplaintInput{
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
		Image:       image,
	})
	if err != nil {
		h.svc.Uploads.Discard(c.Request.Context(), image)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toComplaint(complaint))
}

func (h HandlerSet) MyComplaints(c *gin.Context) {
	complaints, err := h.svc.Complaints.Mine(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(complaints, toComplaint))
}

func (h HandlerSet) AdminListComplaints(c *gin.Context) {
	complaints, err := h.svc.Complaints.ListAll(c.Request.Context(), principal(c), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSlice(complaints, toComplaint))
}

func (h HandlerSet) UpdateComplaintStatus(c *gin.Context) {
	var req complaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}

	complaint, err := h.svc.Complaints.UpdateStatus(c.Request.Context(), principal(c), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toComplaint(complaint))
}
