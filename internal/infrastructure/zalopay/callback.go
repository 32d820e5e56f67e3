package zalopay

import (
	"encoding/json"

	"github.com/orris-inc/zlpay/internal/application/payment/paymentgateway"
	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/mac"
)

// VerifyCallback checks mac against HMAC(key2, data) over the raw data string
// before anything in data is trusted.
func (c *Client) VerifyCallback(data, candidate string) (*paymentgateway.CallbackData, error) {
	return VerifyCallback(c.cfg.Key2, data, candidate)
}

func VerifyCallback(key2, data, candidate string) (*paymentgateway.CallbackData, error) {
	if data == "" {
		return nil, apperrors.NewInvalidRequestError("No data found")
	}
	if !mac.Verify(key2, data, candidate) {
		return nil, apperrors.NewSignatureMismatchError("Invalid mac")
	}

	var payload callbackPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, apperrors.NewInvalidRequestError("Invalid data", err.Error())
	}
	if payload.EmbedData == "" {
		return nil, apperrors.NewInvalidRequestError("Invalid embed data")
	}

	var embed embedPayload
	if err := json.Unmarshal([]byte(payload.EmbedData), &embed); err != nil {
		return nil, apperrors.NewInvalidRequestError("Invalid embed data", err.Error())
	}
	if embed.OrderID <= 0 {
		return nil, apperrors.NewInvalidRequestError("Invalid embed data", "missing orderID")
	}

	return &paymentgateway.CallbackData{
		AppID:          int(payload.AppID),
		AppTransID:     payload.AppTransID,
		AppTime:        int64(payload.AppTime),
		AppUser:        payload.AppUser,
		Amount:         int64(payload.Amount),
		ZPTransID:      payload.ZPTransID.String(),
		ServerTime:     int64(payload.ServerTime),
		Channel:        int(payload.Channel),
		MerchantUserID: payload.MerchantUserID,
		EmbedData: paymentgateway.EmbedData{
			OrderID:     uint(embed.OrderID),
			RedirectURL: embed.RedirectURL,
		},
		RawData: data,
	}, nil
}
