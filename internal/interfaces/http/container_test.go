package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orris-inc/zlpay/internal/infrastructure/config"
	"github.com/orris-inc/zlpay/internal/infrastructure/database"
	"github.com/orris-inc/zlpay/internal/infrastructure/migration"
	"github.com/orris-inc/zlpay/internal/interfaces/http/routes"
	sharedConfig "github.com/orris-inc/zlpay/internal/shared/config"
	"github.com/orris-inc/zlpay/internal/shared/logger"
	"github.com/orris-inc/zlpay/internal/shared/mac"
)

const (
	testKey1 = "PcY4iZIKFCIdgZvA6ueMcMHHUbRLYjPL"
	testKey2 = "kLtgPl8HHhfvMuDHPwKfgfsY4Ydm9eIz"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeZaloPay answers the four merchant API calls and remembers the last
// app_trans_id it was asked to create.
type fakeZaloPay struct {
	mu         sync.Mutex
	appTransID string
	refunds    []int64
}

func (f *fakeZaloPay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/create":
		f.appTransID, _ = req["app_trans_id"].(string)
		_, _ = w.Write([]byte(`{"return_code":1,"order_url":"https://qcgateway.zalopay.vn/openinapp?order=x","zp_trans_token":"tok"}`))
	case "/query":
		_, _ = w.Write([]byte(`{"return_code":1,"zp_trans_id":190613000002244,"amount":50000}`))
	case "/refund":
		amount, _ := req["amount"].(float64)
		f.refunds = append(f.refunds, int64(amount))
		_, _ = w.Write([]byte(`{"return_code":1,"refund_id":555}`))
	case "/query_refund":
		_, _ = w.Write([]byte(`{"return_code":1,"return_message":"Giao dịch thành công"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := database.Open(&sharedConfig.DatabaseConfig{Driver: "sqlite", Database: ":memory:"})
	require.NoError(t, err)

	m, err := migration.NewGooseMigrator(gdb, "sqlite", logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, m.Up(context.Background()))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func newTestContainer(t *testing.T) (*Container, *fakeZaloPay) {
	t.Helper()
	fake := &fakeZaloPay{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{
			BaseURL:      "https://shop.example",
			CheckoutPath: "/checkout",
		},
		ZaloPay: sharedConfig.ZaloPayConfig{
			AppID:            2553,
			Key1:             testKey1,
			Key2:             testKey2,
			SandboxMode:      true,
			Currency:         "VND",
			Timeout:          5 * time.Second,
			EndpointOverride: server.URL,
		},
		Reconcile: sharedConfig.ReconcileConfig{
			PollInterval:     time.Minute,
			MaxPollAttempts:  15,
			LockTTL:          30 * time.Second,
			LockWait:         2 * time.Second,
			RecoveryInterval: 5 * time.Minute,
		},
		Refund: sharedConfig.RefundConfig{MinAmount: 1000},
		Admin:  sharedConfig.AdminConfig{JWTSecret: "0123456789abcdef0123", TokenLifetime: time.Hour},
	}

	c, err := NewContainer(newTestDB(t), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown(context.Background()) })
	return c, fake
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (cl *client) do(method, path string, body any) (int, map[string]any) {
	cl.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(cl.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	w := httptest.NewRecorder()
	cl.engine.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func data(resp map[string]any) map[string]any {
	d, _ := resp["data"].(map[string]any)
	return d
}

func callbackBody(t *testing.T, orderID uint, appTransID string, key string) []byte {
	t.Helper()
	payload := fmt.Sprintf(`{"app_id":2553,"app_trans_id":%q,"amount":50000,"embed_data":"{\"orderID\":%d}","zp_trans_id":190613000002244,"server_time":1735689660000}`,
		appTransID, orderID)
	body, err := json.Marshal(map[string]any{"data": payload, "mac": mac.Sign(key, payload), "type": 1})
	require.NoError(t, err)
	return body
}

func TestContainer_PaymentLifecycle(t *testing.T) {
	c, fake := newTestContainer(t)
	token, _, err := c.jwtSvc.Generate("ops")
	require.NoError(t, err)

	admin := &client{t: t, engine: c.Engine(), token: token}
	buyer := &client{t: t, engine: c.Engine()}

	status, resp := admin.do(http.MethodPost, "/admin/products", map[string]any{"name": "Cà phê", "stock_quantity": 5})
	require.Equal(t, http.StatusCreated, status)
	productID := data(resp)["id"].(float64)

	status, resp = admin.do(http.MethodPost, "/admin/orders", map[string]any{
		"currency": "VND",
		"items":    []map[string]any{{"product_id": productID, "quantity": 2, "total": 50000}},
	})
	require.Equal(t, http.StatusCreated, status)
	orderID := uint(data(resp)["order_id"].(float64))

	// checkout opens a remote order and schedules exactly one poll
	status, resp = buyer.do(http.MethodPost, routes.CheckoutPath, map[string]any{"order_id": orderID})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://qcgateway.zalopay.vn/openinapp?order=x", data(resp)["redirect_url"])
	require.NotEmpty(t, fake.appTransID)
	assert.True(t, c.schedulerManager.IsScheduled("zlp_query_status", orderID))

	// a tampered notification changes nothing
	status, resp = buyer.do(http.MethodPost, routes.CallbackPath, callbackBody(t, orderID, fake.appTransID, testKey1))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, float64(-1), resp["return_code"])

	// a valid notification settles; a replay is acknowledged without effect
	for i := 0; i < 2; i++ {
		status, resp = buyer.do(http.MethodPost, routes.CallbackPath, callbackBody(t, orderID, fake.appTransID, testKey2))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(1), resp["return_code"])
	}

	status, resp = admin.do(http.MethodGet, fmt.Sprintf("/admin/orders/%d/payment", orderID), nil)
	require.Equal(t, http.StatusOK, status)
	state := data(resp)
	assert.Equal(t, "processing", state["status"])
	assert.Equal(t, false, state["poll_scheduled"])
	assert.Equal(t, true, state["payment"].(map[string]any)["callback_received"])
	assert.Equal(t, "190613000002244", state["payment"].(map[string]any)["transaction_id"])
	assert.False(t, c.schedulerManager.IsScheduled("zlp_query_status", orderID))

	status, resp = admin.do(http.MethodGet, "/admin/products", nil)
	require.Equal(t, http.StatusOK, status)
	products := resp["data"].([]any)
	assert.Equal(t, float64(3), products[0].(map[string]any)["stock_quantity"])

	status, resp = admin.do(http.MethodGet, fmt.Sprintf("/admin/orders/%d/notifications", orderID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp["data"].([]any), 2)

	// the buyer returning after the webhook sees the order as paid
	returnURL := fmt.Sprintf("%s/%d?key=%s&appid=2553&checksum=x&apptransid=%s&status=1",
		routes.OrderReceivedPrefix, orderID, c.mustOrderKey(t, orderID), fake.appTransID)
	status, resp = buyer.do(http.MethodGet, returnURL, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", data(resp)["outcome"])

	// partial refund, then cancellation refunds the rest
	status, _ = admin.do(http.MethodPost, fmt.Sprintf("/admin/orders/%d/refunds", orderID), map[string]any{"amount": 20000, "reason": "damaged"})
	require.Equal(t, http.StatusCreated, status)

	status, resp = admin.do(http.MethodGet, fmt.Sprintf("/admin/orders/%d/refund-status", orderID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(resp)["return_code"])

	status, resp = admin.do(http.MethodPost, fmt.Sprintf("/admin/orders/%d/cancel", orderID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(resp)["refunded"])
	assert.Equal(t, []int64{20000, 30000}, fake.refunds)

	status, _ = admin.do(http.MethodPost, fmt.Sprintf("/admin/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestContainer_RouteGuards(t *testing.T) {
	c, _ := newTestContainer(t)
	anonymous := &client{t: t, engine: c.Engine()}

	status, _ := anonymous.do(http.MethodGet, "/admin/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp := anonymous.do(http.MethodGet, routes.CallbackPath, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, float64(-1), resp["return_code"])

	status, resp = anonymous.do(http.MethodPost, routes.CallbackPath, []byte(`{}`))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "No data found", resp["return_message"])

	status, _ = anonymous.do(http.MethodGet, routes.HealthPath, nil)
	assert.Equal(t, http.StatusOK, status)
}

func (c *Container) mustOrderKey(t *testing.T, orderID uint) string {
	t.Helper()
	o, err := c.repos.orderRepo.Get(context.Background(), orderID)
	require.NoError(t, err)
	return o.OrderKey()
}
