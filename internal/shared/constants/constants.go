package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	ContextKeyRequestID = "request_id"
	ContextKeyAdmin     = "admin_subject"

	// Database table names
	TableProducts                = "products"
	TableOrders                  = "orders"
	TableOrderItems              = "order_items"
	TableOrderMeta               = "order_meta"
	TableOrderNotes              = "order_notes"
	TableOrderRefunds            = "order_refunds"
	TableRefundLines             = "refund_lines"
	TablePaymentNotificationLogs = "payment_notification_logs"
)
