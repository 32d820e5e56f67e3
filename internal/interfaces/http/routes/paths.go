package routes

import (
	"fmt"
	"net/url"
)

// Public paths. The callback path is registered in the ZaloPay merchant
// portal, so it must stay stable.
const (
	CheckoutPath        = "/api/v1/checkout/zalopay"
	CallbackPath        = "/api/v1/zalopay/callback"
	OrderReceivedPrefix = "/checkout/order-received"
	HealthPath          = "/health"
	AdminPrefix         = "/admin"
)

// OrderReceivedPath is the buyer's return page for an order.
func OrderReceivedPath(orderID uint, orderKey string) string {
	path := fmt.Sprintf("%s/%d", OrderReceivedPrefix, orderID)
	if orderKey == "" {
		return path
	}
	return path + "?" + url.Values{"key": {orderKey}}.Encode()
}
