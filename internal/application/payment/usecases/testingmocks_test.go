package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) Get(ctx context.Context, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByKey(ctx context.Context, orderKey string) (*order.Order, error) {
	args := m.Called(ctx, orderKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *mockOrderRepository) GetMeta(ctx context.Context, orderID uint, key string) (string, bool, error) {
	args := m.Called(ctx, orderID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockOrderRepository) SetMeta(ctx context.Context, orderID uint, key, value string) error {
	args := m.Called(ctx, orderID, key, value)
	return args.Error(0)
}

func (m *mockOrderRepository) ListMeta(ctx context.Context, orderID uint) (map[string]string, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockOrderRepository) MarkPaid(ctx context.Context, orderID uint, transactionID string) (bool, error) {
	args := m.Called(ctx, orderID, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) ReduceStock(ctx context.Context, orderID uint) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *mockOrderRepository) HasStatus(ctx context.Context, orderID uint, statuses ...order.Status) (bool, error) {
	args := m.Called(ctx, orderID, statuses)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderID uint, status order.Status) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *mockOrderRepository) AddNote(ctx context.Context, orderID uint, text string) error {
	args := m.Called(ctx, orderID, text)
	return args.Error(0)
}

func (m *mockOrderRepository) ListNotes(ctx context.Context, orderID uint) ([]*order.Note, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Note), args.Error(1)
}

func (m *mockOrderRepository) GetRefunds(ctx context.Context, orderID uint) ([]*order.Refund, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Refund), args.Error(1)
}

func (m *mockOrderRepository) CreateRefund(ctx context.Context, refund *order.Refund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *mockOrderRepository) ListAwaitingConfirmation(ctx context.Context, maxAttempts, limit int) ([]uint, error) {
	args := m.Called(ctx, maxAttempts, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateOrder(ctx context.Context, draft paymentgateway.OrderDraft) (*paymentgateway.CreateOrderResult, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.CreateOrderResult), args.Error(1)
}

func (m *mockGateway) QueryStatus(ctx context.Context, appTransID string) (*paymentgateway.StatusResult, error) {
	args := m.Called(ctx, appTransID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.StatusResult), args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.RefundResult), args.Error(1)
}

func (m *mockGateway) QueryRefundStatus(ctx context.Context, merchantRefundID string) (*paymentgateway.RefundStatusResult, error) {
	args := m.Called(ctx, merchantRefundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.RefundStatusResult), args.Error(1)
}

func (m *mockGateway) VerifyCallback(data, mac string) (*paymentgateway.CallbackData, error) {
	args := m.Called(data, mac)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentgateway.CallbackData), args.Error(1)
}

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) ScheduleRecurring(ctx context.Context, taskKey string, orderID uint, interval time.Duration) error {
	args := m.Called(ctx, taskKey, orderID, interval)
	return args.Error(0)
}

func (m *mockScheduler) Cancel(taskKey string, orderID uint) error {
	args := m.Called(taskKey, orderID)
	return args.Error(0)
}

func (m *mockScheduler) IsScheduled(taskKey string, orderID uint) bool {
	args := m.Called(taskKey, orderID)
	return args.Bool(0)
}

// localLocker is a real per-order mutex so concurrency tests exercise serialisation.
type localLocker struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newLocalLocker() *localLocker {
	return &localLocker{locks: make(map[uint]*sync.Mutex)}
}

func (l *localLocker) Lock(_ context.Context, orderID uint) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[orderID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[orderID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

// directTx runs the function without a real transaction.
type directTx struct{}

func (directTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyPaymentSettled(ctx context.Context, notice PaymentSettledNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

func (m *mockNotifier) NotifyRefunded(ctx context.Context, notice RefundNotice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, entry NotificationEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func newPendingOrder(id uint) *order.Order {
	now := time.Now()
	return order.ReconstructOrder(id, "order_abc", order.StatusPending, 50000, "VND",
		order.PaymentMethodZaloPay, "guest",
		[]order.Item{{ID: 1, Name: "Cà phê", Quantity: 2, Total: 50000}},
		nil, nil, 0, now, now)
}

func newOrderWithStatus(id uint, status order.Status) *order.Order {
	now := time.Now()
	return order.ReconstructOrder(id, "order_abc", status, 50000, "VND",
		order.PaymentMethodZaloPay, "guest",
		[]order.Item{{ID: 1, Name: "Cà phê", Quantity: 2, Total: 50000}},
		nil, nil, 0, now, now)
}

// fakeScheduler records schedule and cancel calls.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled map[uint]time.Duration
	scheduleN map[uint]int
	cancelN   map[uint]int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{
		scheduled: make(map[uint]time.Duration),
		scheduleN: make(map[uint]int),
		cancelN:   make(map[uint]int),
	}
}

func (s *fakeScheduler) ScheduleRecurring(_ context.Context, _ string, orderID uint, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scheduled[orderID]; ok {
		return nil
	}
	s.scheduled[orderID] = interval
	s.scheduleN[orderID]++
	return nil
}

func (s *fakeScheduler) Cancel(_ string, orderID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, orderID)
	s.cancelN[orderID]++
	return nil
}

func (s *fakeScheduler) IsScheduled(_ string, orderID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.scheduled[orderID]
	return ok
}

func (s *fakeScheduler) cancels(orderID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelN[orderID]
}

func (s *fakeScheduler) schedules(orderID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleN[orderID]
}
