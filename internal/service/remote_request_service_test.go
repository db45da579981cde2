package service

import (
	"context"
	"testing"
	"time"

	"github.com/repairhub/workshop-service/internal/errs"
	"github.com/repairhub/workshop-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newRemoteRequestService(db *gorm.DB) *RemoteRequestService {
	return NewRemoteRequestService(db, zap.NewNop())
}

func seedRemoteRequest(t *testing.T, svc *RemoteRequestService, email string) *model.RemoteRequest {
	t.Helper()
	req := &model.RemoteRequest{
		CustomerName:     "Dana Brown",
		CustomerEmail:    email,
		IssueDescription: "drill will not spin",
	}
	require.NoError(t, svc.Create(context.Background(), req))
	return req
}

func TestIntakeRequiresContact(t *testing.T) {
	db := newTestDB(t)
	svc := newRemoteRequestService(db)

	err := svc.Create(context.Background(), &model.RemoteRequest{
		CustomerName:     "Dana Brown",
		IssueDescription: "no contact given",
	})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	// phone alone is enough
	err = svc.Create(context.Background(), &model.RemoteRequest{
		CustomerName:     "Dana Brown",
		CustomerPhone:    "555-0101",
		IssueDescription: "phone only",
	})
	require.NoError(t, err)
}

func TestConvertCreatesCustomerAndOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newRemoteRequestService(db)
	req := seedRemoteRequest(t, svc, "dana@x.com")

	wo, err := svc.Convert(context.Background(), req.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, formatWorkOrderNumber(time.Now().Year(), 1), wo.WorkOrderNumber)
	assert.Equal(t, model.StatusPending, wo.Status)
	assert.True(t, wo.IsActive)
	assert.Equal(t, "drill will not spin", wo.IssueDescription)

	var customer model.Customer
	require.NoError(t, db.Where("email = ?", "dana@x.com").First(&customer).Error)
	assert.Equal(t, "Dana", customer.FirstName)
	assert.Equal(t, "Brown", customer.LastName)

	got, err := svc.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RemoteRequestConverted, got.Status)
	assert.Equal(t, "admin", got.ReviewedBy)
	require.NotNil(t, got.WorkOrderID)
	assert.Equal(t, wo.ID, *got.WorkOrderID)
}

func TestConvertReusesCustomerByEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newRemoteRequestService(db)
	existing := seedCustomer(t, db, "a@x.com")

	req := seedRemoteRequest(t, svc, "a@x.com")
	wo, err := svc.Convert(context.Background(), req.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, wo.CustomerID)

	var customers int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&customers).Error)
	assert.Equal(t, int64(1), customers, "no duplicate customer created")
}

func TestConvertIsOneTime(t *testing.T) {
	db := newTestDB(t)
	svc := newRemoteRequestService(db)
	req := seedRemoteRequest(t, svc, "dana@x.com")

	_, err := svc.Convert(context.Background(), req.ID, "admin")
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), req.ID, "admin")
	require.ErrorIs(t, err, errs.ErrAlreadyConverted)

	var orders int64
	require.NoError(t, db.Model(&model.WorkOrder{}).Count(&orders).Error)
	assert.Equal(t, int64(1), orders, "second conversion creates nothing")
}

func TestConvertRequiresEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newRemoteRequestService(db)

	req := &model.RemoteRequest{
		CustomerName:     "Dana Brown",
		CustomerPhone:    "555-0101",
		IssueDescription: "phone only",
	}
	require.NoError(t, svc.Create(context.Background(), req))

	_, err := svc.Convert(context.Background(), req.ID, "admin")
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	// the failed conversion left the request untouched
	got, err := svc.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RemoteRequestNew, got.Status)
}

func TestConvertRetriesOnNumberCollision(t *testing.T) {
	db := newTestDB(t)
	svc := newRemoteRequestService(db)
	req := seedRemoteRequest(t, svc, "dana@x.com")
	seen := forceNumberCollision(t, db, 1)

	wo, err := svc.Convert(context.Background(), req.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, *seen)
	assert.Equal(t, formatWorkOrderNumber(time.Now().Year(), 1), wo.WorkOrderNumber)

	got, err := svc.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RemoteRequestConverted, got.Status)
	require.NotNil(t, got.WorkOrderID)
	assert.Equal(t, wo.ID, *got.WorkOrderID)
}

func TestConvertUnknownRequest(t *testing.T) {
	db := newTestDB(t)
	svc := newRemoteRequestService(db)

	_, err := svc.Convert(context.Background(), 404, "admin")
	require.ErrorIs(t, err, errs.ErrRemoteRequestNotFound)
}
