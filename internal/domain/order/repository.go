package order

import "context"

// Repository is the order store the payment flows read and mutate through.
// Implementations must make MarkPaid a compare-and-set: of any number of
// concurrent calls for one order, exactly one returns applied=true.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, orderID uint) (*Order, error)
	GetByKey(ctx context.Context, orderKey string) (*Order, error)

	GetMeta(ctx context.Context, orderID uint, key string) (value string, found bool, err error)
	SetMeta(ctx context.Context, orderID uint, key, value string) error
	ListMeta(ctx context.Context, orderID uint) (map[string]string, error)

	// MarkPaid records the transaction id and moves the order to processing
	// unless it is already terminal.
	MarkPaid(ctx context.Context, orderID uint, transactionID string) (applied bool, err error)
	// ReduceStock decrements product stock for every item once per order.
	ReduceStock(ctx context.Context, orderID uint) error
	HasStatus(ctx context.Context, orderID uint, statuses ...Status) (bool, error)
	UpdateStatus(ctx context.Context, orderID uint, status Status) error

	AddNote(ctx context.Context, orderID uint, text string) error
	ListNotes(ctx context.Context, orderID uint) ([]*Note, error)

	GetRefunds(ctx context.Context, orderID uint) ([]*Refund, error)
	CreateRefund(ctx context.Context, refund *Refund) error

	// ListAwaitingConfirmation returns pending orders that have a remote
	// transaction, no confirmed payment and fewer than maxAttempts status polls.
	ListAwaitingConfirmation(ctx context.Context, maxAttempts, limit int) ([]uint, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, productID uint) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
}

// ListFilter narrows the admin order listing. Zero values mean no filter.
type ListFilter struct {
	Statuses []Status
	Page     int
	PageSize int
}

// Lister backs the admin listing; it is kept apart from Repository because
// no payment flow needs it.
type Lister interface {
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
}
