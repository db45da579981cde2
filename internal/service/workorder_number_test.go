package service

import (
	"context"
	"testing"
	"time"

	"github.com/repairhub/workshop-service/internal/errs"
	"github.com/repairhub/workshop-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// forceNumberCollision simulates a concurrent creation committing between the
// sequence read and the insert: a create callback slips a clashing row into
// the same transaction right before each of the first n work order inserts,
// so the insert itself fails on the unique number index. Returns a counter of
// how many inserts the callback saw.
func forceNumberCollision(t *testing.T, db *gorm.DB, n int) *int {
	t.Helper()
	seen := 0
	err := db.Callback().Create().Before("gorm:create").Register("clash_number", func(tx *gorm.DB) {
		wo, ok := tx.Statement.Dest.(*model.WorkOrder)
		if !ok {
			return
		}
		seen++
		if seen > n {
			return
		}
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			`INSERT INTO work_orders (work_order_number, customer_id, status, is_active, customer_collected)
			 VALUES (?, ?, 'pending', 1, 0)`,
			wo.WorkOrderNumber, wo.CustomerID)
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Callback().Create().Remove("clash_number"))
	})
	return &seen
}

func TestFormatWorkOrderNumber(t *testing.T) {
	assert.Equal(t, "WO2025-0001", formatWorkOrderNumber(2025, 1))
	assert.Equal(t, "WO2025-9999", formatWorkOrderNumber(2025, 9999))
}

func TestParseSequence(t *testing.T) {
	assert.Equal(t, 1, parseSequence("WO2025-0001", "WO2025-"))
	assert.Equal(t, 9999, parseSequence("WO2025-9999", "WO2025-"))
	assert.Equal(t, 0, parseSequence("WO2024-0042", "WO2025-"))
	assert.Equal(t, 0, parseSequence("garbage", "WO2025-"))
	assert.Equal(t, 0, parseSequence("WO2025-abc", "WO2025-"))
}

func TestCreateAssignsSequentialNumbers(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)
	customer := seedCustomer(t, db, "a@x.com")

	year := time.Now().Year()
	first := createOrder(t, svc, customer.ID)
	second := createOrder(t, svc, customer.ID)

	assert.Equal(t, formatWorkOrderNumber(year, 1), first.WorkOrderNumber)
	assert.Equal(t, formatWorkOrderNumber(year, 2), second.WorkOrderNumber)
	assert.Less(t, first.WorkOrderNumber, second.WorkOrderNumber)
}

func TestCreateSequenceRestartsPerYear(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)
	customer := seedCustomer(t, db, "a@x.com")

	// orders from a past year do not feed this year's sequence
	old := &model.WorkOrder{
		WorkOrderNumber:  formatWorkOrderNumber(2019, 57),
		CustomerID:       customer.ID,
		Status:           model.StatusCollected,
		IsActive:         true,
		IssueDescription: "old ticket",
	}
	require.NoError(t, db.Create(old).Error)

	wo := createOrder(t, svc, customer.ID)
	assert.Equal(t, formatWorkOrderNumber(time.Now().Year(), 1), wo.WorkOrderNumber)
}

func TestCreateCapacityExceeded(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)
	customer := seedCustomer(t, db, "a@x.com")

	year := time.Now().Year()
	last := &model.WorkOrder{
		WorkOrderNumber:  formatWorkOrderNumber(year, maxYearSequence),
		CustomerID:       customer.ID,
		Status:           model.StatusPending,
		IsActive:         true,
		IssueDescription: "the last slot",
	}
	require.NoError(t, db.Create(last).Error)

	wo := &model.WorkOrder{CustomerID: customer.ID, IssueDescription: "one too many"}
	err := svc.Create(context.Background(), wo)
	require.ErrorIs(t, err, errs.ErrCapacityExceeded)

	// no partial record persisted
	var n int64
	require.NoError(t, db.Model(&model.WorkOrder{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCreateContinuesFromHighestExistingNumber(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)
	customer := seedCustomer(t, db, "a@x.com")
	year := time.Now().Year()

	seeded := &model.WorkOrder{
		WorkOrderNumber:  formatWorkOrderNumber(year, 41),
		CustomerID:       customer.ID,
		Status:           model.StatusPending,
		IsActive:         true,
		IssueDescription: "imported from the old system",
	}
	require.NoError(t, db.Create(seeded).Error)

	wo := createOrder(t, svc, customer.ID)
	assert.Equal(t, formatWorkOrderNumber(year, 42), wo.WorkOrderNumber)
}

func TestCreateRetriesOnceOnNumberCollision(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)
	customer := seedCustomer(t, db, "a@x.com")
	seen := forceNumberCollision(t, db, 1)

	wo := &model.WorkOrder{CustomerID: customer.ID, IssueDescription: "collided once"}
	require.NoError(t, svc.Create(context.Background(), wo))

	// first attempt rolled back on the duplicate, second got the number
	assert.Equal(t, 2, *seen)
	assert.Equal(t, formatWorkOrderNumber(time.Now().Year(), 1), wo.WorkOrderNumber)

	var n int64
	require.NoError(t, db.Model(&model.WorkOrder{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCreateSecondCollisionPropagates(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)
	customer := seedCustomer(t, db, "a@x.com")
	seen := forceNumberCollision(t, db, 2)

	wo := &model.WorkOrder{CustomerID: customer.ID, IssueDescription: "collided twice"}
	err := svc.Create(context.Background(), wo)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, 2, *seen)

	// both attempts rolled back, nothing persisted
	var n int64
	require.NoError(t, db.Model(&model.WorkOrder{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestCreateUnknownCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)

	wo := &model.WorkOrder{CustomerID: 42, IssueDescription: "nope"}
	err := svc.Create(context.Background(), wo)
	require.ErrorIs(t, err, errs.ErrCustomerNotFound)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newWorkOrderService(db)
	customer := seedCustomer(t, db, "a@x.com")

	wo := &model.WorkOrder{
		CustomerID:       customer.ID,
		Status:           model.WorkOrderStatus("exploded"),
		IssueDescription: "bad status",
	}
	err := svc.Create(context.Background(), wo)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.Contains(t, err.Error(), "exploded")
}
