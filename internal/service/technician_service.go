package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/repairhub/workshop-service/internal/errs"
	"github.com/repairhub/workshop-service/internal/model"
	"gorm.io/gorm"
)

type TechnicianService struct {
	db *gorm.DB
}

func NewTechnicianService(db *gorm.DB) *TechnicianService {
	return &TechnicianService{db: db}
}

func (s *TechnicianService) Create(ctx context.Context, t *model.Technician) error {
	if t.Email == "" {
		return fmt.Errorf("%w: email is required", errs.ErrInvalidInput)
	}
	err := s.db.WithContext(ctx).Create(t).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.ErrDuplicateEmail
	}
	return err
}

func (s *TechnicianService) GetByID(ctx context.Context, id uint64) (*model.Technician, error) {
	var t model.Technician
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTechnicianNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *TechnicianService) List(ctx context.Context, search, orderBy string, limit, offset int) ([]model.Technician, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Technician{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where(`lower(first_name) LIKE ? OR lower(last_name) LIKE ?
			OR lower(email) LIKE ? OR phone_number LIKE ?`, like, like, like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order := "first_name"
	if field, desc := strings.CutPrefix(orderBy, "-"); field == "first_name" || field == "last_name" || field == "created_at" {
		order = field
		if desc {
			order += " DESC"
		}
	}
	tx = tx.Order(order)
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	var items []model.Technician
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *TechnicianService) Update(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Technician, error) {
	var t model.Technician
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTechnicianNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&t).Updates(changes).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrDuplicateEmail
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes the technician after clearing the reference on dependent
// work orders; the orders themselves are kept.
func (s *TechnicianService) Delete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Technician
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrTechnicianNotFound
			}
			return err
		}
		if err := tx.Model(&model.WorkOrder{}).
			Where("technician_id = ?", id).
			Update("technician_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Technician{}, id).Error
	})
}
