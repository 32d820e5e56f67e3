package usecases

import (
	"context"
	"sync"

	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
)

// fakeOrderRepository is an in-memory store with the same compare-and-set
// guarantee as the database implementation.
type fakeOrderRepository struct {
	mu           sync.Mutex
	orders       map[uint]*order.Order
	meta         map[uint]map[string]string
	notes        map[uint][]string
	refunds      map[uint][]*order.Refund
	stockReduced map[uint]int
	markPaid     map[uint]int
	writes       int
}

func newFakeOrderRepository(orders ...*order.Order) *fakeOrderRepository {
	r := &fakeOrderRepository{
		orders:       make(map[uint]*order.Order),
		meta:         make(map[uint]map[string]string),
		notes:        make(map[uint][]string),
		refunds:      make(map[uint][]*order.Refund),
		stockReduced: make(map[uint]int),
		markPaid:     make(map[uint]int),
	}
	for _, o := range orders {
		r.orders[o.ID()] = o
		r.meta[o.ID()] = make(map[string]string)
	}
	return r
}

func (r *fakeOrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.SetID(uint(len(r.orders) + 1))
	r.orders[o.ID()] = o
	r.meta[o.ID()] = make(map[string]string)
	return nil
}

func (r *fakeOrderRepository) Get(_ context.Context, orderID uint) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperrors.NewNotFoundError("order not found")
	}
	return o, nil
}

func (r *fakeOrderRepository) GetByKey(_ context.Context, orderKey string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderKey() == orderKey {
			return o, nil
		}
	}
	return nil, apperrors.NewNotFoundError("order not found")
}

func (r *fakeOrderRepository) GetMeta(_ context.Context, orderID uint, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.meta[orderID][key]
	return v, ok, nil
}

func (r *fakeOrderRepository) SetMeta(_ context.Context, orderID uint, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.meta[orderID][key] = value
	return nil
}

func (r *fakeOrderRepository) ListMeta(_ context.Context, orderID uint) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.meta[orderID]))
	for k, v := range r.meta[orderID] {
		out[k] = v
	}
	return out, nil
}

func (r *fakeOrderRepository) MarkPaid(_ context.Context, orderID uint, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	o := r.orders[orderID]
	if o.Status() != order.StatusPending {
		return false, nil
	}
	if err := o.MarkAsPaid(transactionID); err != nil {
		return false, err
	}
	r.markPaid[orderID]++
	return true, nil
}

func (r *fakeOrderRepository) ReduceStock(_ context.Context, orderID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.stockReduced[orderID]++
	r.meta[orderID][order.MetaStockReduced] = order.FormatBool(true)
	return nil
}

func (r *fakeOrderRepository) HasStatus(_ context.Context, orderID uint, statuses ...order.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[orderID].Status().In(statuses...), nil
}

func (r *fakeOrderRepository) UpdateStatus(_ context.Context, orderID uint, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	o := r.orders[orderID]
	r.orders[orderID] = order.ReconstructOrder(o.ID(), o.OrderKey(), status, o.Total(), o.Currency(),
		o.PaymentMethod(), o.CustomerUser(), o.Items(), o.TransactionID(), o.PaidAt(),
		o.Version()+1, o.CreatedAt(), o.UpdatedAt())
	return nil
}

func (r *fakeOrderRepository) AddNote(_ context.Context, orderID uint, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.notes[orderID] = append(r.notes[orderID], text)
	return nil
}

func (r *fakeOrderRepository) ListNotes(_ context.Context, orderID uint) ([]*order.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*order.Note, 0, len(r.notes[orderID]))
	for _, text := range r.notes[orderID] {
		out = append(out, &order.Note{OrderID: orderID, Text: text})
	}
	return out, nil
}

func (r *fakeOrderRepository) GetRefunds(_ context.Context, orderID uint) ([]*order.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refunds[orderID], nil
}

func (r *fakeOrderRepository) CreateRefund(_ context.Context, refund *order.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	r.refunds[refund.OrderID] = append(r.refunds[refund.OrderID], refund)
	return nil
}

func (r *fakeOrderRepository) ListAwaitingConfirmation(_ context.Context, maxAttempts, limit int) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for id, o := range r.orders {
		state := order.PaymentStateFromMeta(r.meta[id])
		if o.Status() == order.StatusPending && state.AwaitingConfirmation() && !state.PollsExhausted(maxAttempts) {
			ids = append(ids, id)
		}
		if len(ids) == limit {
			break
		}
	}
	return ids, nil
}

func (r *fakeOrderRepository) status(orderID uint) order.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[orderID].Status()
}

func (r *fakeOrderRepository) metaValue(orderID uint, key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meta[orderID][key]
}

func (r *fakeOrderRepository) noteList(orderID uint) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.notes[orderID]...)
}

func (r *fakeOrderRepository) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}
