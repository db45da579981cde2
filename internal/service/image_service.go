package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/repairhub/workshop-service/internal/errs"
	"github.com/repairhub/workshop-service/internal/model"
	"gorm.io/gorm"
)

type ImageService struct {
	db *gorm.DB
}

func NewImageService(db *gorm.DB) *ImageService {
	return &ImageService{db: db}
}

func (s *ImageService) Create(ctx context.Context, img *model.ProductImage) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.WorkOrder{}).Where("id = ?", img.WorkOrderID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: work order %d", errs.ErrWorkOrderNotFound, img.WorkOrderID)
	}
	return s.db.WithContext(ctx).Create(img).Error
}

func (s *ImageService) GetByID(ctx context.Context, id uint64) (*model.ProductImage, error) {
	var img model.ProductImage
	if err := s.db.WithContext(ctx).First(&img, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrImageNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (s *ImageService) List(ctx context.Context, workOrderID uint64, limit, offset int) ([]model.ProductImage, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.ProductImage{})
	if workOrderID != 0 {
		tx = tx.Where("work_order_id = ?", workOrderID)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	tx = tx.Order("uploaded_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	var items []model.ProductImage
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ImageService) Delete(ctx context.Context, id uint64) (*model.ProductImage, error) {
	var img model.ProductImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&img, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrImageNotFound
			}
			return err
		}
		return tx.Delete(&model.ProductImage{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &img, nil
}
