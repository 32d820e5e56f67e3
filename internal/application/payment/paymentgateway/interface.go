package paymentgateway

import "context"

// Provider return codes.
const (
	ReturnCodeSuccess    = 1
	ReturnCodeFailed     = 2
	ReturnCodeProcessing = 3
	ReturnCodeError      = -1
	// ReturnCodeRetry asks the provider to deliver the notification again.
	ReturnCodeRetry = 0
)

// Gateway is the remote payment provider as seen by the reconciliation flows.
type Gateway interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (*CreateOrderResult, error)
	// QueryStatus returns the provider's view of a transaction. Failed and
	// processing transactions are results, not errors; only transport failures
	// and malformed requests are errors.
	QueryStatus(ctx context.Context, appTransID string) (*StatusResult, error)
	// Refund returns a non-nil result whenever the provider answered, even
	// alongside a rejection error, so the merchant refund id can be recorded.
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	QueryRefundStatus(ctx context.Context, merchantRefundID string) (*RefundStatusResult, error)
	// VerifyCallback authenticates a notification over its raw data string and decodes it.
	VerifyCallback(data, mac string) (*CallbackData, error)
}

// OrderDraft is everything needed to open a remote order. Amount is in the
// smallest currency unit.
type OrderDraft struct {
	OrderID     uint
	AppTransID  string
	AppUser     string
	Amount      int64
	Description string
	ItemsJSON   string
	EmbedJSON   string
	BankCode    string
}

type CreateOrderResult struct {
	AppTransID       string
	ReturnCode       int
	ReturnMessage    string
	SubReturnCode    int
	SubReturnMessage string
	OrderURL         string
	ZPTransToken     string
	OrderToken       string
	QRCode           string
}

type StatusResult struct {
	ReturnCode       int
	ReturnMessage    string
	SubReturnCode    int
	SubReturnMessage string
	IsProcessing     bool
	Amount           int64
	ZPTransID        string
	ServerTime       int64
}

func (r *StatusResult) IsSuccess() bool {
	return r.ReturnCode == ReturnCodeSuccess
}

// IsPending reports a transaction the buyer has not finished yet.
func (r *StatusResult) IsPending() bool {
	return r.ReturnCode == ReturnCodeProcessing || r.IsProcessing
}

type RefundRequest struct {
	ZPTransID   string
	Amount      int64
	Description string
}

type RefundResult struct {
	MerchantRefundID string
	ReturnCode       int
	ReturnMessage    string
	SubReturnCode    int
	SubReturnMessage string
	RefundID         string
}

// IsSuccess treats processing (3) as accepted: the provider has taken the refund.
func (r *RefundResult) IsSuccess() bool {
	return r.ReturnCode == ReturnCodeSuccess || r.ReturnCode == ReturnCodeProcessing
}

type RefundStatusResult struct {
	MerchantRefundID string
	ReturnCode       int
	ReturnMessage    string
	SubReturnCode    int
	SubReturnMessage string
}

// CallbackData is a verified payment notification.
type CallbackData struct {
	AppID          int
	AppTransID     string
	AppTime        int64
	AppUser        string
	Amount         int64
	ZPTransID      string
	ServerTime     int64
	Channel        int
	MerchantUserID string
	EmbedData      EmbedData
	RawData        string
}

// EmbedData is the merchant payload echoed back by the provider.
type EmbedData struct {
	OrderID     uint   `json:"orderID"`
	RedirectURL string `json:"redirecturl"`
}
