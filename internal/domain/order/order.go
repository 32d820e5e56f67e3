package order

import (
	"fmt"
	"time"

	"github.com/orris-inc/zlpay/internal/shared/biztime"
)

// PaymentMethodZaloPay identifies orders paid through ZaloPay.
const PaymentMethodZaloPay = "zlp"

// GuestUser is sent as app_user when the buyer is not signed in.
const GuestUser = "guest"

type Item struct {
	ID        uint
	ProductID *uint
	Name      string
	Quantity  int
	Total     int64
}

type Order struct {
	id            uint
	orderKey      string
	status        Status
	total         int64
	currency      string
	paymentMethod string
	customerUser  string
	items         []Item
	transactionID *string
	paidAt        *time.Time
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

func NewOrder(orderKey, customerUser, currency, paymentMethod string, items []Item) (*Order, error) {
	if orderKey == "" {
		return nil, fmt.Errorf("order key is required")
	}
	if currency == "" {
		return nil, fmt.Errorf("currency is required")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("order must have at least one item")
	}

	var total int64
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %q quantity must be positive", item.Name)
		}
		if item.Total < 0 {
			return nil, fmt.Errorf("item %q total must not be negative", item.Name)
		}
		total += item.Total
	}
	if total <= 0 {
		return nil, fmt.Errorf("order total must be positive")
	}

	if customerUser == "" {
		customerUser = GuestUser
	}

	now := biztime.NowUTC()
	return &Order{
		orderKey:      orderKey,
		status:        StatusPending,
		total:         total,
		currency:      currency,
		paymentMethod: paymentMethod,
		customerUser:  customerUser,
		items:         items,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// MarkAsPaid moves a pending order to processing. Repeating the call on a
// paid order is a no-op.
func (o *Order) MarkAsPaid(transactionID string) error {
	if o.status.IsPaid() {
		return nil
	}
	if o.status != StatusPending {
		return fmt.Errorf("cannot mark order as paid with status %s", o.status)
	}

	now := biztime.NowUTC()
	o.status = StatusProcessing
	o.transactionID = &transactionID
	o.paidAt = &now
	o.updatedAt = now
	o.version++
	return nil
}

func (o *Order) MarkAsFailed() error {
	if o.status.IsTerminal() {
		return fmt.Errorf("cannot mark order as failed with status %s", o.status)
	}
	o.status = StatusFailed
	o.updatedAt = biztime.NowUTC()
	o.version++
	return nil
}

// Description is the text shown to the buyer on the provider's payment page.
func (o *Order) Description() string {
	return fmt.Sprintf("Description for order - %d", o.id)
}

// RefundableTotal subtracts every refunded line from the order total.
func (o *Order) RefundableTotal(refunds []*Refund) int64 {
	remaining := o.total
	for _, refund := range refunds {
		remaining -= refund.RefundedLineTotal()
	}
	return remaining
}

func (o *Order) IsZaloPay() bool {
	return o.paymentMethod == PaymentMethodZaloPay
}

func (o *Order) ID() uint {
	return o.id
}

func (o *Order) OrderKey() string {
	return o.orderKey
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) Total() int64 {
	return o.total
}

func (o *Order) Currency() string {
	return o.currency
}

func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

func (o *Order) CustomerUser() string {
	return o.customerUser
}

func (o *Order) Items() []Item {
	return o.items
}

func (o *Order) TransactionID() *string {
	return o.transactionID
}

func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

func (o *Order) Version() int {
	return o.version
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) SetID(id uint) {
	o.id = id
}

func ReconstructOrder(
	id uint,
	orderKey string,
	status Status,
	total int64,
	currency, paymentMethod, customerUser string,
	items []Item,
	transactionID *string,
	paidAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:            id,
		orderKey:      orderKey,
		status:        status,
		total:         total,
		currency:      currency,
		paymentMethod: paymentMethod,
		customerUser:  customerUser,
		items:         items,
		transactionID: transactionID,
		paidAt:        paidAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}
