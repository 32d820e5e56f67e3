package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/domain/order"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

func newRedirectFixture(o *order.Order) (*HandleRedirectReturnUseCase, *fakeOrderRepository, *mockGateway, *fakeScheduler) {
	repo := newFakeOrderRepository(o)
	repo.meta[o.ID()][order.MetaAppTransID] = "250101_abc"
	gateway := new(mockGateway)
	scheduler := newFakeScheduler()
	settle := newSettleUC(repo, scheduler)
	uc := NewHandleRedirectReturnUseCase(repo, gateway, settle, newLocalLocker(), scheduler, logger.NewNopLogger())
	return uc, repo, gateway, scheduler
}

func redirectCommand() HandleRedirectReturnCommand {
	return HandleRedirectReturnCommand{
		OrderID:    42,
		OrderKey:   "order_abc",
		AppID:      "2553",
		Checksum:   "abc",
		AppTransID: "250101_abc",
		Status:     "1",
	}
}

func TestHandleRedirectReturnUseCase_Execute_Paid(t *testing.T) {
	uc, repo, gateway, scheduler := newRedirectFixture(newPendingOrder(42))
	gateway.On("QueryStatus", mock.Anything, "250101_abc").
		Return(&paymentgateway.StatusResult{ReturnCode: 1, ZPTransID: "T1"}, nil)

	result, err := uc.Execute(context.Background(), redirectCommand())
	require.NoError(t, err)

	assert.Equal(t, RedirectPaid, result.Outcome)
	assert.Equal(t, order.StatusProcessing, repo.status(42))
	assert.Equal(t, "T1", repo.metaValue(42, order.MetaTransactionID))
	assert.Equal(t, 1, scheduler.cancels(42))
}

func TestHandleRedirectReturnUseCase_Execute_Failed(t *testing.T) {
	uc, repo, gateway, _ := newRedirectFixture(newPendingOrder(42))
	gateway.On("QueryStatus", mock.Anything, "250101_abc").
		Return(&paymentgateway.StatusResult{ReturnCode: 2, ReturnMessage: "Giao dịch thất bại"}, nil)

	result, err := uc.Execute(context.Background(), redirectCommand())
	require.NoError(t, err)

	assert.Equal(t, RedirectFailed, result.Outcome)
	assert.Contains(t, result.Message, "Payment failed for order #42")
	assert.Equal(t, order.StatusFailed, repo.status(42))
	assert.NotEmpty(t, repo.metaValue(42, order.MetaFailureReason))
	assert.Zero(t, repo.stockReduced[42])
}

func TestHandleRedirectReturnUseCase_Execute_Processing(t *testing.T) {
	uc, repo, gateway, scheduler := newRedirectFixture(newPendingOrder(42))
	gateway.On("QueryStatus", mock.Anything, "250101_abc").
		Return(&paymentgateway.StatusResult{ReturnCode: 3, IsProcessing: true}, nil)

	result, err := uc.Execute(context.Background(), redirectCommand())
	require.NoError(t, err)

	assert.Equal(t, RedirectPending, result.Outcome)
	assert.Equal(t, MessagePaymentPending, result.Message)
	assert.Equal(t, order.StatusPending, repo.status(42))
	assert.Zero(t, scheduler.cancels(42))
}

func TestHandleRedirectReturnUseCase_Execute_ConnectionError(t *testing.T) {
	uc, repo, gateway, _ := newRedirectFixture(newPendingOrder(42))
	gateway.On("QueryStatus", mock.Anything, "250101_abc").
		Return(nil, apperrors.NewConnectionError("timeout"))

	result, err := uc.Execute(context.Background(), redirectCommand())
	require.NoError(t, err)

	assert.Equal(t, RedirectFailed, result.Outcome)
	assert.Equal(t, MessageUnexpectedError, result.Message)
	assert.Equal(t, order.StatusFailed, repo.status(42))
}

func TestHandleRedirectReturnUseCase_Execute_AlreadyPaid(t *testing.T) {
	uc, _, gateway, _ := newRedirectFixture(newOrderWithStatus(42, order.StatusProcessing))

	result, err := uc.Execute(context.Background(), redirectCommand())
	require.NoError(t, err)

	assert.Equal(t, RedirectPaid, result.Outcome)
	gateway.AssertNotCalled(t, "QueryStatus", mock.Anything, mock.Anything)
}

func TestHandleRedirectReturnUseCase_Execute_UsesStoredAppTransID(t *testing.T) {
	uc, _, gateway, _ := newRedirectFixture(newPendingOrder(42))
	gateway.On("QueryStatus", mock.Anything, "250101_abc").
		Return(&paymentgateway.StatusResult{ReturnCode: 1, ZPTransID: "T1"}, nil)

	cmd := redirectCommand()
	cmd.AppTransID = "250101_forged"
	_, err := uc.Execute(context.Background(), cmd)

	require.NoError(t, err)
	gateway.AssertCalled(t, "QueryStatus", mock.Anything, "250101_abc")
}

func TestHandleRedirectReturnUseCase_Execute_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*HandleRedirectReturnCommand)
	}{
		{"missing checksum", func(c *HandleRedirectReturnCommand) { c.Checksum = "" }},
		{"missing status", func(c *HandleRedirectReturnCommand) { c.Status = "" }},
		{"wrong order id", func(c *HandleRedirectReturnCommand) { c.OrderID = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, gateway, _ := newRedirectFixture(newPendingOrder(42))
			cmd := redirectCommand()
			tt.mutate(&cmd)

			_, err := uc.Execute(context.Background(), cmd)

			assert.True(t, apperrors.IsInvalidRequestError(err))
			gateway.AssertNotCalled(t, "QueryStatus", mock.Anything, mock.Anything)
		})
	}
}
