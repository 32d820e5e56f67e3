package usecases

import (
	"context"
	"time"
)

// PollTaskKey names the recurring status check scheduled per order.
const PollTaskKey = "zlp_query_status"

// PollScheduler runs one recurring task per (taskKey, orderID).
type PollScheduler interface {
	// ScheduleRecurring is a no-op when the task is already scheduled.
	ScheduleRecurring(ctx context.Context, taskKey string, orderID uint, interval time.Duration) error
	Cancel(taskKey string, orderID uint) error
	IsScheduled(taskKey string, orderID uint) bool
}

// OrderLocker serialises settlement work for a single order.
type OrderLocker interface {
	Lock(ctx context.Context, orderID uint) (unlock func(), err error)
}

// TransactionRunner runs fn in one store transaction carried by the context.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PaymentNotifier sends settlement and refund notices. Failures never affect the payment flow.
type PaymentNotifier interface {
	NotifyPaymentSettled(ctx context.Context, notice PaymentSettledNotice) error
	NotifyRefunded(ctx context.Context, notice RefundNotice) error
}

type PaymentSettledNotice struct {
	OrderID       uint
	OrderKey      string
	Amount        int64
	Currency      string
	TransactionID string
	Source        string
	SettledAt     time.Time
}

type RefundNotice struct {
	OrderID          uint
	Amount           int64
	Currency         string
	Reason           string
	MerchantRefundID string
	RefundedAt       time.Time
}

// NotificationRecorder keeps an audit trail of inbound provider notifications.
type NotificationRecorder interface {
	Record(ctx context.Context, entry NotificationEntry) error
}

type NotificationEntry struct {
	OrderID    uint
	AppTransID string
	ZPTransID  string
	Data       string
	Verified   bool
	Outcome    string
	ReceivedAt time.Time
}

// ReturnURLFunc builds the page the buyer is sent back to after paying.
type ReturnURLFunc func(orderID uint, orderKey string) string
