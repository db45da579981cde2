package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/repairhub/workshop-service/internal/service"
)

type DashboardHandler struct {
	svc *service.WorkOrderService
}

func NewDashboardHandler(svc *service.WorkOrderService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary returns aggregate counts and revenue, optionally filtered by a
// start_date/end_date range (YYYY-MM-DD, inclusive).
func (h *DashboardHandler) Summary(c *gin.Context) {
	var start, end *time.Time
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
			return
		}
		start = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
			return
		}
		// inclusive end of day
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}
	summary, err := h.svc.DashboardSummary(c.Request.Context(), start, end)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
