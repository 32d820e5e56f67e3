package order

import "time"

// RefundLine records a refunded line. Subtotal is zero or negative, as the
// storefront stores it.
type RefundLine struct {
	ItemID   *uint
	Name     string
	Subtotal int64
}

type Refund struct {
	ID             uint
	OrderID        uint
	Amount         int64
	Reason         string
	MerchantRefund string
	RemoteRefundID string
	Lines          []RefundLine
	CreatedAt      time.Time
}

// RefundedLineTotal sums the absolute value of the negative line subtotals.
func (r *Refund) RefundedLineTotal() int64 {
	var sum int64
	for _, line := range r.Lines {
		if line.Subtotal < 0 {
			sum += -line.Subtotal
		}
	}
	return sum
}

type Note struct {
	ID        uint
	OrderID   uint
	Text      string
	CreatedAt time.Time
}

// Product is the stock-carrying entity referenced by order items.
type Product struct {
	ID            uint
	Name          string
	StockQuantity *int
}
