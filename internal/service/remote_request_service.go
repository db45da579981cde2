package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/repairhub/workshop-service/internal/errs"
	"github.com/repairhub/workshop-service/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RemoteRequestService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewRemoteRequestService(db *gorm.DB, log *zap.Logger) *RemoteRequestService {
	return &RemoteRequestService{db: db, log: log, now: time.Now}
}

// Create records a public intake submission. Name, issue description, and at
// least one contact channel are required.
func (s *RemoteRequestService) Create(ctx context.Context, req *model.RemoteRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return fmt.Errorf("%w: customer_name is required", errs.ErrInvalidInput)
	}
	if strings.TrimSpace(req.IssueDescription) == "" {
		return fmt.Errorf("%w: issue_description is required", errs.ErrInvalidInput)
	}
	if req.CustomerEmail == "" && req.CustomerPhone == "" {
		return fmt.Errorf("%w: customer_email or customer_phone is required", errs.ErrInvalidInput)
	}
	req.Status = model.RemoteRequestNew
	return s.db.WithContext(ctx).Create(req).Error
}

func (s *RemoteRequestService) GetByID(ctx context.Context, id uint64) (*model.RemoteRequest, error) {
	var req model.RemoteRequest
	if err := s.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrRemoteRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (s *RemoteRequestService) List(ctx context.Context, status string, limit, offset int) ([]model.RemoteRequest, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.RemoteRequest{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	tx = tx.Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	var items []model.RemoteRequest
	if err := tx.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Convert promotes a new remote request into a Customer plus WorkOrder. The
// status flip is guarded by WHERE status = 'new', so converting twice returns
// ErrAlreadyConverted instead of creating a second order. The customer is
// looked up by email and reused when it already exists.
func (s *RemoteRequestService) Convert(ctx context.Context, id uint64, reviewedBy string) (*model.WorkOrder, error) {
	var created *model.WorkOrder

	attempt := func() error {
		created = nil
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var req model.RemoteRequest
			if err := tx.First(&req, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.ErrRemoteRequestNotFound
				}
				return err
			}
			if req.CustomerEmail == "" {
				return fmt.Errorf("%w: customer email is required to convert", errs.ErrInvalidInput)
			}

			res := tx.Model(&model.RemoteRequest{}).
				Where("id = ? AND status = ?", id, model.RemoteRequestNew).
				Updates(map[string]interface{}{
					"status":      model.RemoteRequestConverted,
					"reviewed_by": reviewedBy,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errs.ErrAlreadyConverted
			}

			customer, err := findOrCreateCustomer(tx, &req)
			if err != nil {
				return err
			}

			wo := &model.WorkOrder{
				CustomerID:       customer.ID,
				IssueDescription: req.IssueDescription,
				Status:           model.StatusPending,
				IsActive:         true,
			}
			if err := createWorkOrderTx(tx, wo, s.now().Year()); err != nil {
				return err
			}
			if err := tx.Model(&model.RemoteRequest{}).
				Where("id = ?", id).
				Update("work_order_id", wo.ID).Error; err != nil {
				return err
			}
			wo.Customer = customer
			created = wo
			return nil
		})
	}

	err := attempt()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// number collided with a concurrent creation; the whole transaction
		// rolled back, so rerun it once with a fresh sequence
		s.log.Warn("work order number collision during conversion, retrying",
			zap.Uint64("remote_request_id", id))
		err = attempt()
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func findOrCreateCustomer(tx *gorm.DB, req *model.RemoteRequest) (*model.Customer, error) {
	var customer model.Customer
	err := tx.Where("email = ?", req.CustomerEmail).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	first, last := splitName(req.CustomerName)
	customer = model.Customer{
		FirstName:   first,
		LastName:    last,
		Email:       req.CustomerEmail,
		PhoneNumber: req.CustomerPhone,
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
