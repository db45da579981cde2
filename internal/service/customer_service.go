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

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (s *CustomerService) Create(ctx context.Context, c *model.Customer) error {
	if c.Email == "" {
		return fmt.Errorf("%w: email is required", errs.ErrInvalidInput)
	}
	err := s.db.WithContext(ctx).Create(c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.ErrDuplicateEmail
	}
	return err
}

func (s *CustomerService) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) List(ctx context.Context, search, orderBy string, limit, offset int) ([]model.Customer, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.Customer{})
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
	var items []model.Customer
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *CustomerService) Update(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCustomerNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&c).Updates(changes).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrDuplicateEmail
		}
		return nil, err
	}
	return &c, nil
}

// Delete removes the customer and cascades to its work orders and their
// images, all in one transaction.
func (s *CustomerService) Delete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Customer
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrCustomerNotFound
			}
			return err
		}
		sub := tx.Model(&model.WorkOrder{}).Select("id").Where("customer_id = ?", id)
		if err := tx.Where("work_order_id IN (?)", sub).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&model.WorkOrder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Customer{}, id).Error
	})
}
