package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/interfaces/http/handlers/testutil"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

const testCheckoutURL = "https://shop.example/checkout"

type mockRedirectUC struct {
	cmd    paymentUsecases.HandleRedirectReturnCommand
	calls  int
	result *paymentUsecases.HandleRedirectReturnResult
	err    error
}

func (m *mockRedirectUC) Execute(ctx context.Context, cmd paymentUsecases.HandleRedirectReturnCommand) (*paymentUsecases.HandleRedirectReturnResult, error) {
	m.calls++
	m.cmd = cmd
	return m.result, m.err
}

var providerReturn = map[string]string{
	"key":        "wc_order_abc",
	"appid":      "2553",
	"checksum":   "deadbeef",
	"apptransid": "250101_abc",
	"status":     "1",
}

func newReturnContext(id string, query map[string]string) (*mockRedirectUC, func(uc *mockRedirectUC) (int, string)) {
	uc := &mockRedirectUC{}
	return uc, func(uc *mockRedirectUC) (int, string) {
		handler := NewOrderReceivedHandler(uc, testCheckoutURL, logger.NewNopLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/checkout/order-received/"+id, nil)
		testutil.SetURLParam(c, "id", id)
		testutil.SetQueryParams(c, query)
		handler.OrderReceived(c)
		return w.Code, w.Header().Get("Location")
	}
}

func TestOrderReceivedHandler_Paid(t *testing.T) {
	uc, run := newReturnContext("42", providerReturn)
	uc.result = &paymentUsecases.HandleRedirectReturnResult{OrderID: 42, Outcome: paymentUsecases.RedirectPaid}

	status, _ := run(uc)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, uint(42), uc.cmd.OrderID)
	assert.Equal(t, "wc_order_abc", uc.cmd.OrderKey)
	assert.Equal(t, "250101_abc", uc.cmd.AppTransID)
}

func TestOrderReceivedHandler_PendingStaysOnPage(t *testing.T) {
	uc, run := newReturnContext("42", providerReturn)
	uc.result = &paymentUsecases.HandleRedirectReturnResult{
		OrderID: 42,
		Outcome: paymentUsecases.RedirectPending,
		Message: paymentUsecases.MessagePaymentPending,
	}

	status, location := run(uc)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, location)
}

func TestOrderReceivedHandler_FailedRedirectsToCheckout(t *testing.T) {
	uc, run := newReturnContext("42", providerReturn)
	uc.result = &paymentUsecases.HandleRedirectReturnResult{
		OrderID: 42,
		Outcome: paymentUsecases.RedirectFailed,
		Message: "Payment failed for order #42: Giao dịch thất bại",
	}

	status, location := run(uc)

	require.Equal(t, http.StatusFound, status)
	u, err := url.Parse(location)
	require.NoError(t, err)
	assert.Equal(t, "/checkout", u.Path)
	assert.Equal(t, "Payment failed for order #42: Giao dịch thất bại", u.Query().Get(CheckoutMessageParam))
}

func TestOrderReceivedHandler_UnexpectedErrorRedirects(t *testing.T) {
	uc, run := newReturnContext("42", providerReturn)
	uc.err = errors.New("db down")

	status, location := run(uc)

	require.Equal(t, http.StatusFound, status)
	u, err := url.Parse(location)
	require.NoError(t, err)
	assert.Equal(t, paymentUsecases.MessageUnexpectedError, u.Query().Get(CheckoutMessageParam))
}

func TestOrderReceivedHandler_RejectedReturn(t *testing.T) {
	uc, run := newReturnContext("42", providerReturn)
	uc.err = apperrors.NewInvalidRequestError("order key does not match order")

	status, location := run(uc)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Empty(t, location)
}

func TestOrderReceivedHandler_WithoutProviderParams(t *testing.T) {
	uc, run := newReturnContext("42", map[string]string{"key": "wc_order_abc"})

	status, _ := run(uc)

	assert.Equal(t, http.StatusOK, status)
	assert.Zero(t, uc.calls)
}

func TestOrderReceivedHandler_InvalidID(t *testing.T) {
	uc, run := newReturnContext("abc", providerReturn)

	status, _ := run(uc)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Zero(t, uc.calls)
}
