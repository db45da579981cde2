package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/repairhub/workshop-service/api"
	"github.com/repairhub/workshop-service/internal/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Customer      *handler.CustomerHandler
	Technician    *handler.TechnicianHandler
	WorkOrder     *handler.WorkOrderHandler
	Image         *handler.ImageHandler
	RemoteRequest *handler.RemoteRequestHandler
	Dashboard     *handler.DashboardHandler
}

func New(h Handlers, writeToken, mediaRoot string) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/media", mediaRoot)

	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	// public intake form endpoint
	r.POST("/intake", h.RemoteRequest.Intake)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/customers", h.Customer.List)
		v1.GET("/customers/:id", h.Customer.Get)
		v1.GET("/technicians", h.Technician.List)
		v1.GET("/technicians/:id", h.Technician.Get)
		v1.GET("/workorders", h.WorkOrder.List)
		v1.GET("/workorders/:id", h.WorkOrder.Get)
		v1.GET("/images", h.Image.List)
		v1.GET("/images/:id", h.Image.Get)
		v1.GET("/remote-requests", h.RemoteRequest.List)
		v1.GET("/remote-requests/:id", h.RemoteRequest.Get)
		v1.GET("/dashboard-summary", h.Dashboard.Summary)

		write := v1.Group("", handler.RequireWriteAccess(writeToken))
		{
			write.POST("/customers", h.Customer.Create)
			write.PUT("/customers/:id", h.Customer.Update)
			write.DELETE("/customers/:id", h.Customer.Delete)

			write.POST("/technicians", h.Technician.Create)
			write.PUT("/technicians/:id", h.Technician.Update)
			write.DELETE("/technicians/:id", h.Technician.Delete)

			write.POST("/workorders", h.WorkOrder.Create)
			write.PUT("/workorders/:id", h.WorkOrder.Update)
			write.DELETE("/workorders/:id", h.WorkOrder.Delete)
			write.POST("/workorders/:id/mark_repaired", h.WorkOrder.MarkRepaired)
			write.POST("/workorders/:id/mark_collected", h.WorkOrder.MarkCollected)
			// bulk routes live outside /workorders: gin cannot mix the
			// :id param with static segments in one method tree
			write.POST("/bulk/workorders", h.WorkOrder.BulkUpdate)
			write.POST("/bulk/workorders/archive", h.WorkOrder.BulkArchive)

			write.POST("/images", h.Image.Upload)
			write.DELETE("/images/:id", h.Image.Delete)

			write.POST("/remote-requests/:id/convert", h.RemoteRequest.Convert)
		}
	}

	return r
}
