package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("order_abc", "", "VND", PaymentMethodZaloPay, []Item{
		{Name: "Cà phê sữa", Quantity: 2, Total: 30000},
		{Name: "Bánh mì", Quantity: 1, Total: 20000},
	})
	require.NoError(t, err)
	o.SetID(42)
	return o
}

func TestNewOrder(t *testing.T) {
	o := newTestOrder(t)

	assert.Equal(t, int64(50000), o.Total())
	assert.Equal(t, StatusPending, o.Status())
	assert.Equal(t, GuestUser, o.CustomerUser())
	assert.True(t, o.IsZaloPay())
	assert.Equal(t, "Description for order - 42", o.Description())
}

func TestNewOrder_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		items []Item
	}{
		{"missing key", "", []Item{{Name: "a", Quantity: 1, Total: 1000}}},
		{"no items", "k", nil},
		{"zero quantity", "k", []Item{{Name: "a", Quantity: 0, Total: 1000}}},
		{"negative total", "k", []Item{{Name: "a", Quantity: 1, Total: -1}}},
		{"zero total", "k", []Item{{Name: "a", Quantity: 1, Total: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(tt.key, "u", "VND", PaymentMethodZaloPay, tt.items)
			assert.Error(t, err)
		})
	}
}

func TestOrder_MarkAsPaid(t *testing.T) {
	o := newTestOrder(t)

	require.NoError(t, o.MarkAsPaid("T1"))
	assert.Equal(t, StatusProcessing, o.Status())
	require.NotNil(t, o.TransactionID())
	assert.Equal(t, "T1", *o.TransactionID())
	assert.NotNil(t, o.PaidAt())
	assert.Equal(t, 1, o.Version())

	// idempotent
	require.NoError(t, o.MarkAsPaid("T2"))
	assert.Equal(t, "T1", *o.TransactionID())
	assert.Equal(t, 1, o.Version())
}

func TestOrder_MarkAsPaid_RejectsCancelled(t *testing.T) {
	o := ReconstructOrder(1, "k", StatusCancelled, 1000, "VND", PaymentMethodZaloPay, GuestUser,
		nil, nil, nil, 0, time.Now(), time.Now())
	assert.Error(t, o.MarkAsPaid("T1"))
}

func TestOrder_MarkAsFailed(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.MarkAsFailed())
	assert.Equal(t, StatusFailed, o.Status())
	assert.Error(t, o.MarkAsFailed())
}

func TestOrder_RefundableTotal(t *testing.T) {
	o := newTestOrder(t)

	refunds := []*Refund{
		{Lines: []RefundLine{{Name: "Cà phê sữa", Subtotal: -15000}, {Name: "shipping", Subtotal: 0}}},
		{Lines: []RefundLine{{Name: "Bánh mì", Subtotal: -20000}, {Name: "bogus", Subtotal: 500}}},
	}

	assert.Equal(t, int64(15000), o.RefundableTotal(refunds))
	assert.Equal(t, int64(50000), o.RefundableTotal(nil))
}

func TestStatus(t *testing.T) {
	for _, s := range PaidStatuses {
		assert.True(t, s.IsPaid(), s)
		assert.True(t, s.IsTerminal(), s)
	}
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusFailed.IsPaid())
	assert.False(t, Status("bogus").IsTerminal())
	assert.True(t, StatusOnHold.In(PaidStatuses...))
	assert.Equal(t, []string{"processing", "completed", "on-hold"}, StatusStrings(PaidStatuses))
}

func TestPaymentStateFromMeta(t *testing.T) {
	state := PaymentStateFromMeta(map[string]string{
		MetaAppTransID:       "250101_abc",
		MetaCallbackReceived: "no",
		MetaPollAttempts:     "3",
		MetaStockReduced:     "yes",
	})

	assert.Equal(t, "250101_abc", state.AppTransID)
	assert.False(t, state.CallbackReceived)
	assert.Equal(t, 3, state.PollAttemptCount)
	assert.True(t, state.StockReduced)
	assert.True(t, state.AwaitingConfirmation())

	state.CallbackReceived = true
	assert.False(t, state.AwaitingConfirmation())
}
