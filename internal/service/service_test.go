package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/repairhub/workshop-service/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Customer{},
		&model.Technician{},
		&model.WorkOrder{},
		&model.ProductImage{},
		&model.RemoteRequest{},
	))
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) *model.Customer {
	t.Helper()
	c := &model.Customer{FirstName: "Alice", LastName: "Smith", Email: email}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedTechnician(t *testing.T, db *gorm.DB, email string) *model.Technician {
	t.Helper()
	tech := &model.Technician{FirstName: "Bob", LastName: "Jones", Email: email}
	require.NoError(t, db.Create(tech).Error)
	return tech
}

func newWorkOrderService(db *gorm.DB) *WorkOrderService {
	return NewWorkOrderService(db, zap.NewNop())
}

func createOrder(t *testing.T, svc *WorkOrderService, customerID uint64) *model.WorkOrder {
	t.Helper()
	wo := &model.WorkOrder{
		CustomerID:       customerID,
		ProductType:      "laptop",
		IssueDescription: "does not boot",
	}
	require.NoError(t, svc.Create(context.Background(), wo))
	return wo
}
