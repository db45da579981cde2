package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/repairhub/workshop-service/internal/model"
	"github.com/repairhub/workshop-service/internal/service"
)

type RemoteRequestHandler struct {
	svc *service.RemoteRequestService
}

func NewRemoteRequestHandler(svc *service.RemoteRequestService) *RemoteRequestHandler {
	return &RemoteRequestHandler{svc: svc}
}

type intakeRequest struct {
	CustomerName      string `json:"customer_name" binding:"required"`
	CustomerEmail     string `json:"customer_email"`
	CustomerPhone     string `json:"customer_phone"`
	IssueDescription  string `json:"issue_description" binding:"required"`
	PreferredTool     string `json:"preferred_tool"`
	PreferredDatetime string `json:"preferred_datetime"`
}

// Intake is the public service-request form endpoint.
func (h *RemoteRequestHandler) Intake(c *gin.Context) {
	var req intakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	rr := &model.RemoteRequest{
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerPhone:     req.CustomerPhone,
		IssueDescription:  req.IssueDescription,
		PreferredTool:     req.PreferredTool,
		PreferredDatetime: req.PreferredDatetime,
	}
	if err := h.svc.Create(c.Request.Context(), rr); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "thank you, your service request has been received",
		"request_id": rr.ID,
	})
}

func (h *RemoteRequestHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	items, total, err := h.svc.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remote_requests": items, "total": total})
}

func (h *RemoteRequestHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rr, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rr)
}

type convertRequest struct {
	ReviewedBy string `json:"reviewed_by"`
}

// Convert promotes a remote request into a customer + work order.
func (h *RemoteRequestHandler) Convert(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req convertRequest
	_ = c.ShouldBindJSON(&req) // reviewed_by is optional, so an empty body is fine
	wo, err := h.svc.Convert(c.Request.Context(), id, req.ReviewedBy)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "remote request converted",
		"work_order_id":     wo.ID,
		"work_order_number": wo.WorkOrderNumber,
	})
}
