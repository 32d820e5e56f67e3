package order

import "strconv"

// Order metadata keys. The names match what the storefront already persisted,
// so existing orders keep reconciling after migration.
const (
	MetaAppTransID       = "zlp_app_trans_id"
	MetaCallbackReceived = "zlp_callback_received"
	MetaTransactionID    = "zp_trans_id"
	MetaPollAttempts     = "zlp_call_interval"
	MetaRefundID         = "zlp_m_refund_id"
	MetaStockReduced     = "_order_stock_reduced"
	MetaFailureReason    = "zlp_failure_reason"
)

const (
	metaTrue  = "yes"
	metaFalse = "no"
)

// FormatBool renders a boolean the way flags are stored in metadata.
func FormatBool(v bool) string {
	if v {
		return metaTrue
	}
	return metaFalse
}

// ParseBool reads a metadata flag. Unknown values are false.
func ParseBool(v string) bool {
	switch v {
	case metaTrue, "1", "true":
		return true
	default:
		return false
	}
}

// PaymentState is the reconciliation view of an order, derived from its metadata.
type PaymentState struct {
	AppTransID       string `json:"app_trans_id,omitempty"`
	CallbackReceived bool   `json:"callback_received"`
	TransactionID    string `json:"transaction_id,omitempty"`
	PollAttemptCount int    `json:"poll_attempt_count"`
	StockReduced     bool   `json:"stock_reduced"`
	LastRefundID     string `json:"last_refund_id,omitempty"`
}

// PaymentStateFromMeta builds the state from an order's metadata map.
func PaymentStateFromMeta(meta map[string]string) PaymentState {
	attempts, _ := strconv.Atoi(meta[MetaPollAttempts])
	return PaymentState{
		AppTransID:       meta[MetaAppTransID],
		CallbackReceived: ParseBool(meta[MetaCallbackReceived]),
		TransactionID:    meta[MetaTransactionID],
		PollAttemptCount: attempts,
		StockReduced:     ParseBool(meta[MetaStockReduced]),
		LastRefundID:     meta[MetaRefundID],
	}
}

// AwaitingConfirmation reports whether the poller still has work for this order.
func (s PaymentState) AwaitingConfirmation() bool {
	return s.AppTransID != "" && !s.CallbackReceived
}

// PollsExhausted reports whether polling already gave up on this order.
func (s PaymentState) PollsExhausted(maxAttempts int) bool {
	return s.PollAttemptCount >= maxAttempts
}
