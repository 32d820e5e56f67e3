package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentUsecases "github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/interfaces/http/handlers/testutil"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/logger"
)

type mockInitiateUC struct {
	cmd    paymentUsecases.InitiatePaymentCommand
	result *paymentUsecases.InitiatePaymentResult
	err    error
}

func (m *mockInitiateUC) Execute(ctx context.Context, cmd paymentUsecases.InitiatePaymentCommand) (*paymentUsecases.InitiatePaymentResult, error) {
	m.cmd = cmd
	return m.result, m.err
}

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"

func TestCheckoutHandler_Checkout(t *testing.T) {
	uc := &mockInitiateUC{result: &paymentUsecases.InitiatePaymentResult{
		OrderID:     42,
		AppTransID:  "250101_abc",
		RedirectURL: "https://qcgateway.zalopay.vn/openinapp?order=abc",
	}}
	handler := NewCheckoutHandler(uc, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/checkout/zalopay",
		map[string]any{"order_id": 42, "bank_code": "CC"})
	c.Request.Header.Set("User-Agent", iphoneUA)

	handler.Checkout(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), uc.cmd.OrderID)
	assert.Equal(t, "CC", uc.cmd.BankCode)
	assert.True(t, uc.cmd.Mobile)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var data paymentUsecases.InitiatePaymentResult
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "https://qcgateway.zalopay.vn/openinapp?order=abc", data.RedirectURL)
}

func TestCheckoutHandler_DesktopKeepsBankCode(t *testing.T) {
	uc := &mockInitiateUC{result: &paymentUsecases.InitiatePaymentResult{}}
	handler := NewCheckoutHandler(uc, logger.NewNopLogger())

	c, _ := testutil.NewTestContext(http.MethodPost, "/api/v1/checkout/zalopay", map[string]any{"order_id": 42})
	c.Request.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	handler.Checkout(c)

	assert.False(t, uc.cmd.Mobile)
	assert.Empty(t, uc.cmd.BankCode)
}

func TestCheckoutHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		err    error
		status int
	}{
		{"missing order id", map[string]any{"bank_code": "CC"}, nil, http.StatusBadRequest},
		{"order not payable", map[string]any{"order_id": 42}, apperrors.NewInvalidRequestError("order is not pending"), http.StatusBadRequest},
		{"provider unreachable", map[string]any{"order_id": 42}, apperrors.NewConnectionError("timeout"), http.StatusBadGateway},
		{"provider rejected", map[string]any{"order_id": 42}, apperrors.NewRemoteRejectedError("Giao dịch thất bại"), http.StatusUnprocessableEntity},
		{"unexpected", map[string]any{"order_id": 42}, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCheckoutHandler(&mockInitiateUC{err: tt.err}, logger.NewNopLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/checkout/zalopay", tt.body)

			handler.Checkout(c)

			assert.Equal(t, tt.status, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.False(t, resp.Success)
			assert.NotContains(t, w.Body.String(), "db down")
		})
	}
}
