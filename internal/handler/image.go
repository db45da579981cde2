package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/repairhub/workshop-service/internal/imagestore"
	"github.com/repairhub/workshop-service/internal/model"
	"github.com/repairhub/workshop-service/internal/service"
	"go.uber.org/zap"
)

type ImageHandler struct {
	svc   *service.ImageService
	store *imagestore.Store
	log   *zap.Logger
}

func NewImageHandler(svc *service.ImageService, store *imagestore.Store, log *zap.Logger) *ImageHandler {
	return &ImageHandler{svc: svc, store: store, log: log}
}

// Upload accepts a multipart form with "work_order_id" and an "image" file.
func (h *ImageHandler) Upload(c *gin.Context) {
	workOrderID, err := strconv.ParseUint(c.PostForm("work_order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work_order_id"})
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read image file"})
		return
	}
	defer f.Close()

	rel, err := h.store.Save(fileHeader.Filename, f)
	if err != nil {
		h.log.Error("image save failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}
	img := &model.ProductImage{WorkOrderID: workOrderID, Image: rel}
	if err := h.svc.Create(c.Request.Context(), img); err != nil {
		if rmErr := h.store.Remove(rel); rmErr != nil {
			h.log.Warn("orphan image cleanup failed", zap.Error(rmErr))
		}
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (h *ImageHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	img, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func (h *ImageHandler) List(c *gin.Context) {
	var workOrderID uint64
	if v := c.Query("work_order_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid work_order_id"})
			return
		}
		workOrderID = id
	}
	limit, offset := pagination(c)
	items, total, err := h.svc.List(c.Request.Context(), workOrderID, limit, offset)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": items, "total": total})
}

func (h *ImageHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	img, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		abortErr(c, err)
		return
	}
	if err := h.store.Remove(img.Image); err != nil {
		h.log.Warn("image file removal failed", zap.String("path", img.Image), zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}
