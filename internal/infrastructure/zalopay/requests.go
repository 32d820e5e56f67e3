package zalopay

import (
	"net/url"
	"strconv"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/shared/mac"
)

// SourceWeb is appended to create requests after signing.
const SourceWeb = "web"

// signedRequest is a request body ready to send in either encoding.
type signedRequest interface {
	formValues() url.Values
}

type CreateOrderRequest struct {
	AppID       int    `json:"app_id"`
	AppUser     string `json:"app_user"`
	AppTransID  string `json:"app_trans_id"`
	AppTime     int64  `json:"app_time"`
	Amount      int64  `json:"amount"`
	Item        string `json:"item"`
	EmbedData   string `json:"embed_data"`
	Description string `json:"description"`
	BankCode    string `json:"bank_code"`
	Mac         string `json:"mac"`
	Source      string `json:"source"`
}

// BuildCreateOrderRequest signs a create request over
// app_id|app_trans_id|app_user|amount|app_time|embed_data|item.
func BuildCreateOrderRequest(appID int, key1 string, draft paymentgateway.OrderDraft, appTime int64) CreateOrderRequest {
	req := CreateOrderRequest{
		AppID:       appID,
		AppUser:     draft.AppUser,
		AppTransID:  draft.AppTransID,
		AppTime:     appTime,
		Amount:      draft.Amount,
		Item:        draft.ItemsJSON,
		EmbedData:   draft.EmbedJSON,
		Description: draft.Description,
		BankCode:    draft.BankCode,
	}
	req.Mac = mac.Sign(key1, mac.Join(
		strconv.Itoa(req.AppID),
		req.AppTransID,
		req.AppUser,
		strconv.FormatInt(req.Amount, 10),
		strconv.FormatInt(req.AppTime, 10),
		req.EmbedData,
		req.Item,
	))
	req.Source = SourceWeb
	return req
}

func (r CreateOrderRequest) formValues() url.Values {
	return url.Values{
		"app_id":       {strconv.Itoa(r.AppID)},
		"app_user":     {r.AppUser},
		"app_trans_id": {r.AppTransID},
		"app_time":     {strconv.FormatInt(r.AppTime, 10)},
		"amount":       {strconv.FormatInt(r.Amount, 10)},
		"item":         {r.Item},
		"embed_data":   {r.EmbedData},
		"description":  {r.Description},
		"bank_code":    {r.BankCode},
		"mac":          {r.Mac},
		"source":       {r.Source},
	}
}

type QueryRequest struct {
	AppID      int    `json:"app_id"`
	AppTransID string `json:"app_trans_id"`
	Mac        string `json:"mac"`
}

// BuildQueryRequest signs over app_id|app_trans_id|key1. key1 appears both as
// the HMAC key and inside the preimage; the provider expects exactly that.
func BuildQueryRequest(appID int, key1, appTransID string) QueryRequest {
	return QueryRequest{
		AppID:      appID,
		AppTransID: appTransID,
		Mac:        mac.Sign(key1, mac.Join(strconv.Itoa(appID), appTransID, key1)),
	}
}

func (r QueryRequest) formValues() url.Values {
	return url.Values{
		"app_id":       {strconv.Itoa(r.AppID)},
		"app_trans_id": {r.AppTransID},
		"mac":          {r.Mac},
	}
}

type RefundRequest struct {
	AppID       int    `json:"app_id"`
	MRefundID   string `json:"m_refund_id"`
	ZPTransID   string `json:"zp_trans_id"`
	Amount      int64  `json:"amount"`
	Timestamp   int64  `json:"timestamp"`
	Description string `json:"description"`
	Mac         string `json:"mac"`
}

// BuildRefundRequest signs over app_id|zp_trans_id|amount|description|timestamp.
func BuildRefundRequest(appID int, key1, mRefundID string, in paymentgateway.RefundRequest, timestamp int64) RefundRequest {
	req := RefundRequest{
		AppID:       appID,
		MRefundID:   mRefundID,
		ZPTransID:   in.ZPTransID,
		Amount:      in.Amount,
		Timestamp:   timestamp,
		Description: in.Description,
	}
	req.Mac = mac.Sign(key1, mac.Join(
		strconv.Itoa(req.AppID),
		req.ZPTransID,
		strconv.FormatInt(req.Amount, 10),
		req.Description,
		strconv.FormatInt(req.Timestamp, 10),
	))
	return req
}

func (r RefundRequest) formValues() url.Values {
	return url.Values{
		"app_id":      {strconv.Itoa(r.AppID)},
		"m_refund_id": {r.MRefundID},
		"zp_trans_id": {r.ZPTransID},
		"amount":      {strconv.FormatInt(r.Amount, 10)},
		"timestamp":   {strconv.FormatInt(r.Timestamp, 10)},
		"description": {r.Description},
		"mac":         {r.Mac},
	}
}

type QueryRefundRequest struct {
	AppID     int    `json:"app_id"`
	MRefundID string `json:"m_refund_id"`
	Timestamp int64  `json:"timestamp"`
	Mac       string `json:"mac"`
}

// BuildQueryRefundRequest signs over app_id|m_refund_id|timestamp.
func BuildQueryRefundRequest(appID int, key1, mRefundID string, timestamp int64) QueryRefundRequest {
	return QueryRefundRequest{
		AppID:     appID,
		MRefundID: mRefundID,
		Timestamp: timestamp,
		Mac: mac.Sign(key1, mac.Join(
			strconv.Itoa(appID),
			mRefundID,
			strconv.FormatInt(timestamp, 10),
		)),
	}
}

func (r QueryRefundRequest) formValues() url.Values {
	return url.Values{
		"app_id":      {strconv.Itoa(r.AppID)},
		"m_refund_id": {r.MRefundID},
		"timestamp":   {strconv.FormatInt(r.Timestamp, 10)},
		"mac":         {r.Mac},
	}
}
