package zalopay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexString decodes a JSON string or number into its text form. The
// provider sends transaction ids as numbers in some payloads and strings in
// others.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// FlexInt decodes a JSON number or numeric string.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(string(s), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = FlexInt(n)
	return nil
}

type baseResponse struct {
	ReturnCode       FlexInt `json:"return_code"`
	ReturnMessage    string  `json:"return_message"`
	SubReturnCode    FlexInt `json:"sub_return_code"`
	SubReturnMessage string  `json:"sub_return_message"`
}

type createOrderResponse struct {
	baseResponse
	OrderURL     string `json:"order_url"`
	ZPTransToken string `json:"zp_trans_token"`
	OrderToken   string `json:"order_token"`
	QRCode       string `json:"qr_code"`
}

type queryResponse struct {
	baseResponse
	IsProcessing bool       `json:"is_processing"`
	Amount       FlexInt    `json:"amount"`
	ZPTransID    FlexString `json:"zp_trans_id"`
	ServerTime   FlexInt    `json:"server_time"`
}

type refundResponse struct {
	baseResponse
	RefundID FlexString `json:"refund_id"`
}

type queryRefundResponse struct {
	baseResponse
}

// callbackPayload is the decoded data field of a payment notification.
type callbackPayload struct {
	AppID          FlexInt    `json:"app_id"`
	AppTransID     string     `json:"app_trans_id"`
	AppTime        FlexInt    `json:"app_time"`
	AppUser        string     `json:"app_user"`
	Amount         FlexInt    `json:"amount"`
	EmbedData      string     `json:"embed_data"`
	Item           string     `json:"item"`
	ZPTransID      FlexString `json:"zp_trans_id"`
	ServerTime     FlexInt    `json:"server_time"`
	Channel        FlexInt    `json:"channel"`
	MerchantUserID string     `json:"merchant_user_id"`
}

type embedPayload struct {
	OrderID     FlexInt `json:"orderID"`
	RedirectURL string  `json:"redirecturl"`
}
