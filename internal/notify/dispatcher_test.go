package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/repairhub/workshop-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingMailer struct {
	sent []string // "to|subject" per delivery
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

type brokenMarkerStore struct{}

func (brokenMarkerStore) SetIfAbsent(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (brokenMarkerStore) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func testOrder(status model.WorkOrderStatus) *model.WorkOrder {
	return &model.WorkOrder{
		ID:              7,
		WorkOrderNumber: "WO2025-0007",
		Status:          status,
		Customer: &model.Customer{
			FirstName: "Dana",
			LastName:  "Brown",
			Email:     "dana@x.com",
		},
	}
}

func TestNotifySuppressedWithinWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	mailer := &recordingMailer{}
	d := NewDispatcher(NewMemoryMarkerStore(clock), mailer, zap.NewNop())

	wo := testOrder(model.StatusCompleted)
	assert.True(t, d.NotifyStatusChange(context.Background(), wo))

	clock.advance(time.Minute)
	assert.False(t, d.NotifyStatusChange(context.Background(), wo))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "dana@x.com|Update on Your Service Request #WO2025-0007", mailer.sent[0])
}

func TestNotifyResendsAfterWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	mailer := &recordingMailer{}
	d := NewDispatcher(NewMemoryMarkerStore(clock), mailer, zap.NewNop())

	wo := testOrder(model.StatusCompleted)
	assert.True(t, d.NotifyStatusChange(context.Background(), wo))

	clock.advance(DedupWindow + time.Second)
	assert.True(t, d.NotifyStatusChange(context.Background(), wo))
	assert.Len(t, mailer.sent, 2)
}

func TestNotifyDistinctStatusesNotSuppressed(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	mailer := &recordingMailer{}
	d := NewDispatcher(NewMemoryMarkerStore(clock), mailer, zap.NewNop())

	assert.True(t, d.NotifyStatusChange(context.Background(), testOrder(model.StatusInProgress)))
	assert.True(t, d.NotifyStatusChange(context.Background(), testOrder(model.StatusCompleted)))
	assert.Len(t, mailer.sent, 2)
}

func TestNotifyWithoutCustomerEmail(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(NewMemoryMarkerStore(nil), mailer, zap.NewNop())

	wo := testOrder(model.StatusCompleted)
	wo.Customer.Email = ""
	assert.False(t, d.NotifyStatusChange(context.Background(), wo))

	wo.Customer = nil
	assert.False(t, d.NotifyStatusChange(context.Background(), wo))
	assert.Empty(t, mailer.sent)
}

func TestNotifyMailerFailureIsNonFatal(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("gateway timeout")}
	d := NewDispatcher(NewMemoryMarkerStore(nil), mailer, zap.NewNop())

	assert.False(t, d.NotifyStatusChange(context.Background(), testOrder(model.StatusCompleted)))
}

func TestNotifyMailerFailureDoesNotBurnWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	mailer := &recordingMailer{err: errors.New("gateway timeout")}
	d := NewDispatcher(NewMemoryMarkerStore(clock), mailer, zap.NewNop())

	wo := testOrder(model.StatusCompleted)
	assert.False(t, d.NotifyStatusChange(context.Background(), wo))

	// the failed attempt released its marker, so the next save retries
	mailer.err = nil
	clock.advance(time.Minute)
	assert.True(t, d.NotifyStatusChange(context.Background(), wo))
	assert.Len(t, mailer.sent, 1)
}

func TestNotifyProceedsWhenMarkerStoreDown(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(brokenMarkerStore{}, mailer, zap.NewNop())

	assert.True(t, d.NotifyStatusChange(context.Background(), testOrder(model.StatusCompleted)))
	assert.Len(t, mailer.sent, 1)
}

func TestSendSMSAlwaysSucceeds(t *testing.T) {
	d := NewDispatcher(NewMemoryMarkerStore(nil), &recordingMailer{}, zap.NewNop())
	assert.NoError(t, d.SendSMS("555-0101", "your order is ready"))
}

func TestMemoryMarkerStoreExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := NewMemoryMarkerStore(clock)
	ctx := context.Background()

	fresh, err := store.SetIfAbsent(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, _ = store.SetIfAbsent(ctx, "k", time.Minute)
	assert.False(t, fresh)

	clock.advance(61 * time.Second)
	fresh, _ = store.SetIfAbsent(ctx, "k", time.Minute)
	assert.True(t, fresh)
}
