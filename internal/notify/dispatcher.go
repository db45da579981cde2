package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/repairhub/workshop-service/internal/metrics"
	"github.com/repairhub/workshop-service/internal/model"
	"go.uber.org/zap"
)

// DedupWindow bounds repeated notifications for the same (work order, status)
// pair: rapid re-saves with the same resulting status produce one email.
const DedupWindow = 5 * time.Minute

type Dispatcher struct {
	markers MarkerStore
	mailer  Mailer
	log     *zap.Logger
	window  time.Duration
}

func NewDispatcher(markers MarkerStore, mailer Mailer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{markers: markers, mailer: mailer, log: log, window: DedupWindow}
}

// NotifyStatusChange emails the customer about the order's new status.
// Returns true only when a message was handed to the transport. Every failure
// path logs and reports false; nothing here propagates to the caller, the
// record save has already committed. The de-dup marker is claimed before the
// send so concurrent saves can't both deliver; on a transport failure it is
// released again, keeping the window open for the next save to retry.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, wo *model.WorkOrder) bool {
	if wo.Customer == nil || wo.Customer.Email == "" {
		d.log.Warn("no customer email for work order",
			zap.String("work_order", wo.WorkOrderNumber))
		metrics.NotificationsFailed.Inc()
		return false
	}

	key := fmt.Sprintf("notify:%d:%s", wo.ID, wo.Status)
	fresh, err := d.markers.SetIfAbsent(ctx, key, d.window)
	if err != nil {
		// a broken marker store must not swallow the email
		d.log.Warn("de-dup marker store error", zap.Error(err))
		fresh = true
	}
	if !fresh {
		d.log.Debug("notification suppressed by de-dup window",
			zap.String("work_order", wo.WorkOrderNumber),
			zap.String("status", string(wo.Status)))
		metrics.NotificationsSuppressed.Inc()
		return false
	}

	subject := fmt.Sprintf("Update on Your Service Request #%s", wo.WorkOrderNumber)
	text := fmt.Sprintf("Your service request %s status has changed to %s.",
		wo.WorkOrderNumber, wo.Status)
	html := fmt.Sprintf(
		"<p>Dear %s,</p><p>Your service request <strong>%s</strong> status has changed to <strong>%s</strong>.</p>",
		wo.Customer.FullName(), wo.WorkOrderNumber, wo.Status)

	if err := d.mailer.Send(ctx, wo.Customer.Email, subject, text, html); err != nil {
		d.log.Error("status update email failed",
			zap.String("work_order", wo.WorkOrderNumber),
			zap.Error(err))
		if derr := d.markers.Delete(ctx, key); derr != nil {
			d.log.Warn("de-dup marker release failed", zap.Error(derr))
		}
		metrics.NotificationsFailed.Inc()
		return false
	}
	d.log.Info("status update email sent",
		zap.String("work_order", wo.WorkOrderNumber),
		zap.String("to", wo.Customer.Email),
		zap.String("status", string(wo.Status)))
	metrics.NotificationsSent.Inc()
	return true
}

// SendSMS is a stub transport: it accepts (destination, message), logs, and
// always succeeds. Kept as the integration point for a real SMS provider.
func (d *Dispatcher) SendSMS(to, message string) error {
	d.log.Info("sms disabled, logging only",
		zap.String("to", to),
		zap.String("message", message))
	return nil
}
