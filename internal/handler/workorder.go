package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairhub/workshop-service/internal/kafka"
	"github.com/repairhub/workshop-service/internal/metrics"
	"github.com/repairhub/workshop-service/internal/model"
	"github.com/repairhub/workshop-service/internal/notify"
	"github.com/repairhub/workshop-service/internal/service"
)

type WorkOrderHandler struct {
	svc        *service.WorkOrderService
	dispatcher *notify.Dispatcher
	producer   kafka.WorkOrderEventProducer
}

func NewWorkOrderHandler(svc *service.WorkOrderService, dispatcher *notify.Dispatcher, producer kafka.WorkOrderEventProducer) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc, dispatcher: dispatcher, producer: producer}
}

type createWorkOrderRequest struct {
	CustomerID              uint64     `json:"customer_id" binding:"required"`
	TechnicianID            *uint64    `json:"technician_id"`
	ProductType             string     `json:"product_type"`
	ProductBrand            string     `json:"product_brand"`
	ProductModel            string     `json:"product_model"`
	SerialNumber            string     `json:"serial_number"`
	IssueDescription        string     `json:"issue_description" binding:"required"`
	EstimatedCost           *float64   `json:"estimated_cost"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date"`
	Status                  string     `json:"status"`
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	wo := &model.WorkOrder{
		CustomerID:              req.CustomerID,
		TechnicianID:            req.TechnicianID,
		ProductType:             req.ProductType,
		ProductBrand:            req.ProductBrand,
		ProductModel:            req.ProductModel,
		SerialNumber:            req.SerialNumber,
		IssueDescription:        req.IssueDescription,
		EstimatedCost:           req.EstimatedCost,
		EstimatedCompletionDate: req.EstimatedCompletionDate,
		Status:                  model.WorkOrderStatus(req.Status),
	}
	if req.Status == "" {
		wo.Status = model.StatusPending
	}
	if err := h.svc.Create(c.Request.Context(), wo); err != nil {
		abortErr(c, err)
		return
	}
	metrics.OrdersCreated.Inc()
	// creation never triggers a customer notification, only the event feed
	h.produceAsync("workorder.created", wo)
	c.JSON(http.StatusCreated, wo)
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	wo, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	f := service.WorkOrderFilter{
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		OrderBy: c.Query("ordering"),
	}
	if v := c.Query("customer_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.CustomerID = id
		}
	}
	if v := c.Query("technician_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.TechnicianID = id
		}
	}
	if v := c.Query("is_repaired"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsRepaired = &b
		}
	}
	if v := c.Query("created_after"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.CreatedAfter = &t
		}
	}
	if v := c.Query("created_before"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.CreatedBefore = &t
		}
	}
	f.Limit, f.Offset = pagination(c)

	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"work_orders": items, "total": total})
}

type updateWorkOrderRequest struct {
	TechnicianID            *uint64    `json:"technician_id,omitempty"`
	ProductType             *string    `json:"product_type,omitempty"`
	ProductBrand            *string    `json:"product_brand,omitempty"`
	ProductModel            *string    `json:"product_model,omitempty"`
	SerialNumber            *string    `json:"serial_number,omitempty"`
	IssueDescription        *string    `json:"issue_description,omitempty"`
	RepairDetails           *string    `json:"repair_details,omitempty"`
	ReasonForNotRepairing   *string    `json:"reason_for_not_repairing,omitempty"`
	EstimatedCost           *float64   `json:"estimated_cost,omitempty"`
	EstimatedCompletionDate *time.Time `json:"estimated_completion_date,omitempty"`
	TotalCost               *float64   `json:"total_cost,omitempty"`
	IsRepaired              *bool      `json:"is_repaired,omitempty"`
	CustomerCollected       *bool      `json:"customer_collected,omitempty"`
	DateCollected           *time.Time `json:"date_collected,omitempty"`
	Status                  *string    `json:"status,omitempty"`
	IsActive                *bool      `json:"is_active,omitempty"`
}

func (h *WorkOrderHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	changes := make(map[string]interface{})
	if req.TechnicianID != nil {
		if *req.TechnicianID == 0 {
			changes["technician_id"] = nil
		} else {
			changes["technician_id"] = *req.TechnicianID
		}
	}
	if req.ProductType != nil {
		changes["product_type"] = *req.ProductType
	}
	if req.ProductBrand != nil {
		changes["product_brand"] = *req.ProductBrand
	}
	if req.ProductModel != nil {
		changes["product_model"] = *req.ProductModel
	}
	if req.SerialNumber != nil {
		changes["serial_number"] = *req.SerialNumber
	}
	if req.IssueDescription != nil {
		changes["issue_description"] = *req.IssueDescription
	}
	if req.RepairDetails != nil {
		changes["repair_details"] = *req.RepairDetails
	}
	if req.ReasonForNotRepairing != nil {
		changes["reason_for_not_repairing"] = *req.ReasonForNotRepairing
	}
	if req.EstimatedCost != nil {
		changes["estimated_cost"] = *req.EstimatedCost
	}
	if req.EstimatedCompletionDate != nil {
		changes["estimated_completion_date"] = *req.EstimatedCompletionDate
	}
	if req.TotalCost != nil {
		changes["total_cost"] = *req.TotalCost
	}
	if req.IsRepaired != nil {
		changes["is_repaired"] = *req.IsRepaired
	}
	if req.CustomerCollected != nil {
		changes["customer_collected"] = *req.CustomerCollected
	}
	if req.DateCollected != nil {
		changes["date_collected"] = *req.DateCollected
	}
	if req.Status != nil {
		changes["status"] = *req.Status
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	wo, statusChanged, err := h.svc.Update(c.Request.Context(), id, changes)
	if err != nil {
		abortErr(c, err)
		return
	}
	if statusChanged {
		h.notifyAsync(wo)
	}
	c.JSON(http.StatusOK, wo)
}

func (h *WorkOrderHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		abortErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkOrderHandler) MarkRepaired(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	wo, statusChanged, err := h.svc.MarkRepaired(c.Request.Context(), id)
	if err != nil {
		abortErr(c, err)
		return
	}
	if statusChanged {
		h.notifyAsync(wo)
	}
	c.JSON(http.StatusOK, gin.H{"status": "work order marked as repaired", "work_order": wo})
}

func (h *WorkOrderHandler) MarkCollected(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	wo, statusChanged, err := h.svc.MarkCollected(c.Request.Context(), id)
	if err != nil {
		abortErr(c, err)
		return
	}
	if statusChanged {
		h.notifyAsync(wo)
	}
	c.JSON(http.StatusOK, gin.H{"status": "work order marked as collected", "work_order": wo})
}

type bulkUpdateRequest struct {
	IDs          []string `json:"ids" binding:"required"`
	Action       string   `json:"action" binding:"required"`
	TechnicianID *uint64  `json:"technician_id"`
}

func (h *WorkOrderHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	h.runBulk(c, req.IDs, service.BulkAction(req.Action), req.TechnicianID)
}

type bulkArchiveRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *WorkOrderHandler) BulkArchive(c *gin.Context) {
	var req bulkArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	h.runBulk(c, req.IDs, service.BulkArchive, nil)
}

func (h *WorkOrderHandler) runBulk(c *gin.Context, rawIDs []string, action service.BulkAction, technicianID *uint64) {
	ids := make([]uint64, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			// the whole call fails before any mutation
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work order id: " + raw})
			return
		}
		ids = append(ids, id)
	}
	affected, err := h.svc.BulkUpdate(c.Request.Context(), ids, action, technicianID)
	if err != nil {
		abortErr(c, err)
		return
	}
	metrics.BulkRowsAffected.Add(float64(affected))
	detail := "bulk update applied"
	if affected == 0 {
		detail = "no active work orders matched"
	}
	c.JSON(http.StatusOK, gin.H{"affected": affected, "detail": detail})
}

// notifyAsync hands the status change to the dispatcher and event feed off
// the request path.
func (h *WorkOrderHandler) notifyAsync(wo *model.WorkOrder) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h.dispatcher.NotifyStatusChange(ctx, wo)
		h.producer.ProduceWorkOrderEvent(ctx, "workorder.status_changed", eventPayload(wo))
	}()
}

func (h *WorkOrderHandler) produceAsync(event string, wo *model.WorkOrder) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.producer.ProduceWorkOrderEvent(ctx, event, eventPayload(wo))
	}()
}

func eventPayload(wo *model.WorkOrder) map[string]interface{} {
	return map[string]interface{}{
		"work_order_id":     wo.ID,
		"work_order_number": wo.WorkOrderNumber,
		"customer_id":       wo.CustomerID,
		"status":            string(wo.Status),
	}
}
