// Package zalopay talks to the ZaloPay v2 merchant API.
package zalopay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	"github.com/orris-inc/zlpay/internal/shared/biztime"
	"github.com/orris-inc/zlpay/internal/shared/config"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/id"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/utils"
)

const (
	// MaxTimeout is the ceiling for one provider call.
	MaxTimeout = 70 * time.Second
	// Maximum response body size (1MB)
	maxResponseSize = 1 << 20

	pathCreate      = "create"
	pathQuery       = "query"
	pathRefund      = "refund"
	pathQueryRefund = "query_refund"

	encodingJSON = "json"
	encodingForm = "form"
)

// Client implements paymentgateway.Gateway over HTTP.
type Client struct {
	cfg        config.ZaloPayConfig
	httpClient *http.Client
	logger     logger.Interface
}

// Ensure Client implements Gateway
var _ paymentgateway.Gateway = (*Client)(nil)

// NewClient copies cfg; later changes to the caller's value have no effect.
func NewClient(cfg config.ZaloPayConfig, logger logger.Interface) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 || timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	if cfg.RequestEncoding == "" {
		cfg.RequestEncoding = encodingJSON
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) CreateOrder(ctx context.Context, draft paymentgateway.OrderDraft) (*paymentgateway.CreateOrderResult, error) {
	req := BuildCreateOrderRequest(c.cfg.AppID, c.cfg.Key1, draft, biztime.NowMillis())

	var resp createOrderResponse
	if err := c.post(ctx, pathCreate, req, &resp); err != nil {
		return nil, err
	}

	if int(resp.ReturnCode) != paymentgateway.ReturnCodeSuccess {
		c.logger.Warnw("zalopay rejected create order",
			"app_trans_id", req.AppTransID,
			"return_code", resp.ReturnCode,
			"return_message", resp.ReturnMessage,
			"sub_return_message", resp.SubReturnMessage,
		)
		return nil, rejected("create order rejected", resp.baseResponse)
	}

	return &paymentgateway.CreateOrderResult{
		AppTransID:       req.AppTransID,
		ReturnCode:       int(resp.ReturnCode),
		ReturnMessage:    resp.ReturnMessage,
		SubReturnCode:    int(resp.SubReturnCode),
		SubReturnMessage: resp.SubReturnMessage,
		OrderURL:         resp.OrderURL,
		ZPTransToken:     resp.ZPTransToken,
		OrderToken:       resp.OrderToken,
		QRCode:           resp.QRCode,
	}, nil
}

func (c *Client) QueryStatus(ctx context.Context, appTransID string) (*paymentgateway.StatusResult, error) {
	req := BuildQueryRequest(c.cfg.AppID, c.cfg.Key1, appTransID)

	var resp queryResponse
	if err := c.post(ctx, pathQuery, req, &resp); err != nil {
		return nil, err
	}

	if resp.ReturnCode < 0 {
		return nil, rejected("query rejected", resp.baseResponse)
	}

	return &paymentgateway.StatusResult{
		ReturnCode:       int(resp.ReturnCode),
		ReturnMessage:    resp.ReturnMessage,
		SubReturnCode:    int(resp.SubReturnCode),
		SubReturnMessage: resp.SubReturnMessage,
		IsProcessing:     resp.IsProcessing,
		Amount:           int64(resp.Amount),
		ZPTransID:        resp.ZPTransID.String(),
		ServerTime:       int64(resp.ServerTime),
	}, nil
}

// Refund generates a fresh m_refund_id for every call.
func (c *Client) Refund(ctx context.Context, in paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	now := biztime.NowUTC()
	mRefundID, err := id.NewRefundID(now, c.cfg.AppID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refund id: %w", err)
	}
	req := BuildRefundRequest(c.cfg.AppID, c.cfg.Key1, mRefundID, in, now.UnixMilli())

	var resp refundResponse
	if err := c.post(ctx, pathRefund, req, &resp); err != nil {
		return nil, err
	}

	result := &paymentgateway.RefundResult{
		MerchantRefundID: mRefundID,
		ReturnCode:       int(resp.ReturnCode),
		ReturnMessage:    resp.ReturnMessage,
		SubReturnCode:    int(resp.SubReturnCode),
		SubReturnMessage: resp.SubReturnMessage,
		RefundID:         resp.RefundID.String(),
	}
	if !result.IsSuccess() {
		return result, rejected("refund rejected", resp.baseResponse)
	}
	return result, nil
}

func (c *Client) QueryRefundStatus(ctx context.Context, mRefundID string) (*paymentgateway.RefundStatusResult, error) {
	req := BuildQueryRefundRequest(c.cfg.AppID, c.cfg.Key1, mRefundID, biztime.NowMillis())

	var resp queryRefundResponse
	if err := c.post(ctx, pathQueryRefund, req, &resp); err != nil {
		return nil, err
	}

	if resp.ReturnCode < 0 {
		return nil, rejected("refund query rejected", resp.baseResponse)
	}

	return &paymentgateway.RefundStatusResult{
		MerchantRefundID: mRefundID,
		ReturnCode:       int(resp.ReturnCode),
		ReturnMessage:    resp.ReturnMessage,
		SubReturnCode:    int(resp.SubReturnCode),
		SubReturnMessage: resp.SubReturnMessage,
	}, nil
}

// post sends req and decodes the reply into out. Every transport failure,
// non-200 status, empty or undecodable body is a ConnectionError.
func (c *Client) post(ctx context.Context, path string, req signedRequest, out any) error {
	body, contentType, err := c.encode(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.cfg.Endpoint() + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debugw("zalopay request", "path", path, "params", maskedValues(req.formValues()))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warnw("zalopay request failed", "path", path, "error", err)
		return apperrors.NewConnectionError("failed to reach ZaloPay", err.Error()).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return apperrors.NewConnectionError("failed to read ZaloPay response", err.Error()).WithCause(err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnw("zalopay unexpected status", "path", path, "status", resp.StatusCode)
		return apperrors.NewConnectionError("unexpected ZaloPay response", fmt.Sprintf("status code %d", resp.StatusCode))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return apperrors.NewConnectionError("empty ZaloPay response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewConnectionError("invalid ZaloPay response", err.Error()).WithCause(err)
	}

	return nil
}

func (c *Client) encode(req signedRequest) (io.Reader, string, error) {
	if c.cfg.RequestEncoding == encodingForm {
		return strings.NewReader(req.formValues().Encode()), "application/x-www-form-urlencoded", nil
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(b), "application/json", nil
}

func rejected(message string, resp baseResponse) *apperrors.AppError {
	detail := resp.ReturnMessage
	if resp.SubReturnMessage != "" {
		detail = fmt.Sprintf("%s (%s)", resp.ReturnMessage, resp.SubReturnMessage)
	}
	return apperrors.NewRemoteRejectedError(message, detail)
}

func maskedValues(values url.Values) map[string]string {
	flat := make(map[string]string, len(values))
	for k := range values {
		flat[k] = values.Get(k)
	}
	return utils.MaskParams(flat)
}
