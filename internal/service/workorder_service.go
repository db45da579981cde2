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

type WorkOrderService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewWorkOrderService(db *gorm.DB, log *zap.Logger) *WorkOrderService {
	return &WorkOrderService{db: db, log: log, now: time.Now}
}

// Create persists a new work order and assigns its number in the same
// transaction. A unique-constraint collision from a concurrent creation is
// retried once with a recomputed sequence; a second collision propagates.
func (s *WorkOrderService) Create(ctx context.Context, wo *model.WorkOrder) error {
	if wo.CustomerID == 0 {
		return fmt.Errorf("%w: customer_id is required", errs.ErrInvalidInput)
	}
	if wo.Status == "" {
		wo.Status = model.StatusPending
	}
	if !wo.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", errs.ErrInvalidInput, wo.Status)
	}
	wo.IsActive = true
	wo.WorkOrderNumber = ""

	attempt := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var n int64
			if err := tx.Model(&model.Customer{}).Where("id = ?", wo.CustomerID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return errs.ErrCustomerNotFound
			}
			if wo.TechnicianID != nil {
				if err := tx.Model(&model.Technician{}).Where("id = ?", *wo.TechnicianID).Count(&n).Error; err != nil {
					return err
				}
				if n == 0 {
					return errs.ErrTechnicianNotFound
				}
			}
			if err := checkActiveSerial(tx, wo.SerialNumber, 0); err != nil {
				return err
			}
			return createWorkOrderTx(tx, wo, s.now().Year())
		})
	}

	err := attempt()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		s.log.Warn("work order number collision, retrying",
			zap.String("number", wo.WorkOrderNumber))
		wo.ID = 0
		wo.WorkOrderNumber = ""
		err = attempt()
	}
	return err
}

// checkActiveSerial enforces serial uniqueness among active orders at the
// application level so it holds regardless of which schema built the store;
// the postgres migration carries a matching partial unique index as backstop.
func checkActiveSerial(tx *gorm.DB, serial string, excludeID uint64) error {
	if serial == "" {
		return nil
	}
	q := tx.Model(&model.WorkOrder{}).
		Where("serial_number = ? AND is_active = ?", serial, true)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateSerial, serial)
	}
	return nil
}

func (s *WorkOrderService) GetByID(ctx context.Context, id uint64) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := s.db.WithContext(ctx).
		Preload("Customer").Preload("Technician").Preload("Images").
		First(&wo, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWorkOrderNotFound
		}
		return nil, err
	}
	return &wo, nil
}

// WorkOrderFilter narrows List. Zero values mean "no filter".
type WorkOrderFilter struct {
	Status        string
	CustomerID    uint64
	TechnicianID  uint64
	IsRepaired    *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string
	OrderBy       string // e.g. "-created_at"; leading "-" means descending
	Limit         int
	Offset        int
}

var workOrderOrderFields = map[string]string{
	"created_at":    "work_orders.created_at",
	"status":        "work_orders.status",
	"product_brand": "work_orders.product_brand",
	"total_cost":    "work_orders.total_cost",
}

func (s *WorkOrderService) List(ctx context.Context, f WorkOrderFilter) ([]model.WorkOrder, int64, error) {
	tx := s.db.WithContext(ctx).Model(&model.WorkOrder{})
	if f.Status != "" {
		tx = tx.Where("work_orders.status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		tx = tx.Where("work_orders.customer_id = ?", f.CustomerID)
	}
	if f.TechnicianID != 0 {
		tx = tx.Where("work_orders.technician_id = ?", f.TechnicianID)
	}
	if f.IsRepaired != nil {
		tx = tx.Where("work_orders.is_repaired = ?", *f.IsRepaired)
	}
	if f.CreatedAfter != nil {
		tx = tx.Where("work_orders.created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		tx = tx.Where("work_orders.created_at <= ?", *f.CreatedBefore)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		tx = tx.
			Joins("LEFT JOIN customers ON customers.id = work_orders.customer_id").
			Joins("LEFT JOIN technicians ON technicians.id = work_orders.technician_id").
			Where(`lower(work_orders.work_order_number) LIKE ?
				OR lower(customers.first_name) LIKE ? OR lower(customers.last_name) LIKE ?
				OR lower(technicians.first_name) LIKE ? OR lower(technicians.last_name) LIKE ?
				OR lower(work_orders.product_type) LIKE ? OR lower(work_orders.product_brand) LIKE ?
				OR lower(work_orders.serial_number) LIKE ?`,
				like, like, like, like, like, like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "work_orders.created_at DESC"
	if f.OrderBy != "" {
		field, desc := strings.CutPrefix(f.OrderBy, "-")
		if col, ok := workOrderOrderFields[field]; ok {
			order = col
			if desc {
				order += " DESC"
			}
		}
	}
	tx = tx.Order(order)
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}

	var items []model.WorkOrder
	if err := tx.Preload("Customer").Preload("Technician").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update applies a partial update and reports whether the stored status
// changed, so the caller can trigger the notification path. The comparison is
// against the previously persisted row, read inside the same transaction.
func (s *WorkOrderService) Update(ctx context.Context, id uint64, changes map[string]interface{}) (*model.WorkOrder, bool, error) {
	// the number is immutable once assigned
	delete(changes, "work_order_number")
	if raw, ok := changes["status"]; ok {
		st := model.WorkOrderStatus(fmt.Sprint(raw))
		if !st.Valid() {
			return nil, false, fmt.Errorf("%w: unknown status %q", errs.ErrInvalidInput, raw)
		}
		changes["status"] = st
	}

	statusChanged := false
	var updated model.WorkOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior model.WorkOrder
		if err := tx.First(&prior, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrWorkOrderNotFound
			}
			return err
		}
		if st, ok := changes["status"].(model.WorkOrderStatus); ok {
			statusChanged = st != prior.Status
		}
		serial := prior.SerialNumber
		if raw, ok := changes["serial_number"]; ok {
			serial = fmt.Sprint(raw)
		}
		active := prior.IsActive
		if b, ok := changes["is_active"].(bool); ok {
			active = b
		}
		if active {
			if err := checkActiveSerial(tx, serial, id); err != nil {
				return err
			}
		}
		if len(changes) > 0 {
			if err := tx.Model(&model.WorkOrder{}).Where("id = ?", id).Updates(changes).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Customer").Preload("Technician").Preload("Images").First(&updated, id).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &updated, statusChanged, nil
}

// MarkRepaired sets is_repaired and completes the order.
func (s *WorkOrderService) MarkRepaired(ctx context.Context, id uint64) (*model.WorkOrder, bool, error) {
	return s.Update(ctx, id, map[string]interface{}{
		"is_repaired": true,
		"status":      model.StatusCompleted,
	})
}

// MarkCollected records the hand-over to the customer.
func (s *WorkOrderService) MarkCollected(ctx context.Context, id uint64) (*model.WorkOrder, bool, error) {
	return s.Update(ctx, id, map[string]interface{}{
		"customer_collected": true,
		"date_collected":     s.now(),
		"status":             model.StatusCollected,
	})
}

// Delete removes the order and its images in one transaction.
func (s *WorkOrderService) Delete(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wo model.WorkOrder
		if err := tx.First(&wo, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrWorkOrderNotFound
			}
			return err
		}
		if err := tx.Where("work_order_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.WorkOrder{}, id).Error
	})
}

type BulkAction string

const (
	BulkMarkCompleted      BulkAction = "mark_completed"
	BulkMarkReadyForPickup BulkAction = "mark_ready_for_pickup"
	BulkArchive            BulkAction = "archive"
	BulkAssignTechnician   BulkAction = "assign_technician"
)

// BulkUpdate applies the action to every active order in ids as one atomic
// unit and returns the affected count. Zero matches is not an error. Bulk
// changes are row updates, not per-order saves, so they do not emit
// status-change notifications.
func (s *WorkOrderService) BulkUpdate(ctx context.Context, ids []uint64, action BulkAction, technicianID *uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var changes map[string]interface{}
	switch action {
	case BulkMarkCompleted:
		changes = map[string]interface{}{"status": model.StatusCompleted}
	case BulkMarkReadyForPickup:
		changes = map[string]interface{}{"status": model.StatusReadyForCollection}
	case BulkArchive:
		changes = map[string]interface{}{"is_active": false}
	case BulkAssignTechnician:
		if technicianID == nil || *technicianID == 0 {
			return 0, fmt.Errorf("%w: technician_id is required for assign_technician", errs.ErrInvalidInput)
		}
		changes = map[string]interface{}{"technician_id": *technicianID}
	default:
		return 0, fmt.Errorf("%w: unknown bulk action %q", errs.ErrInvalidInput, action)
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if action == BulkAssignTechnician {
			var n int64
			if err := tx.Model(&model.Technician{}).Where("id = ?", *technicianID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: technician %d not found", errs.ErrInvalidInput, *technicianID)
			}
		}
		res := tx.Model(&model.WorkOrder{}).
			Where("id IN ? AND is_active = ?", ids, true).
			Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

type CustomerCost struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	TotalOrders int64   `json:"total_orders"`
	TotalCost   float64 `json:"total_cost"`
}

type DashboardSummary struct {
	TotalCustomers  int64          `json:"total_customers"`
	TotalOrders     int64          `json:"total_orders"`
	PendingOrders   int64          `json:"pending_orders"`
	CompletedOrders int64          `json:"completed_orders"`
	TotalRevenue    float64        `json:"total_revenue"`
	CostPerCustomer []CustomerCost `json:"cost_per_customer"`
}

// DashboardSummary aggregates order counts and revenue, optionally limited to
// a created_at range.
func (s *WorkOrderService) DashboardSummary(ctx context.Context, start, end *time.Time) (*DashboardSummary, error) {
	scoped := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.WorkOrder{})
		if start != nil && end != nil {
			q = q.Where("work_orders.created_at BETWEEN ? AND ?", *start, *end)
		}
		return q
	}

	out := &DashboardSummary{CostPerCustomer: []CustomerCost{}}
	if err := s.db.WithContext(ctx).Model(&model.Customer{}).Count(&out.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := scoped().Count(&out.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := scoped().Where("status = ?", model.StatusPending).Count(&out.PendingOrders).Error; err != nil {
		return nil, err
	}
	if err := scoped().Where("status = ?", model.StatusCompleted).Count(&out.CompletedOrders).Error; err != nil {
		return nil, err
	}
	if err := scoped().Select("COALESCE(SUM(total_cost), 0)").Scan(&out.TotalRevenue).Error; err != nil {
		return nil, err
	}
	err := scoped().
		Joins("JOIN customers ON customers.id = work_orders.customer_id").
		Select(`customers.first_name, customers.last_name,
			COUNT(work_orders.id) AS total_orders,
			COALESCE(SUM(work_orders.total_cost), 0) AS total_cost`).
		Group("customers.id, customers.first_name, customers.last_name").
		Scan(&out.CostPerCustomer).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
