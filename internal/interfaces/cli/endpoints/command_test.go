package endpoints

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/zlpay/internal/infrastructure/config"
	sharedConfig "github.com/orris-inc/zlpay/internal/shared/config"
)

func TestPrint(t *testing.T) {
	cfg := &config.Config{
		Server:  sharedConfig.ServerConfig{BaseURL: "https://shop.example/"},
		ZaloPay: sharedConfig.ZaloPayConfig{AppID: 2553, SandboxMode: true},
	}

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, cfg))

	out := buf.String()
	assert.Contains(t, out, "sandbox (app_id 2553)")
	assert.Contains(t, out, "https://shop.example/api/v1/zalopay/callback")
	assert.Contains(t, out, "https://shop.example/checkout/order-received")
	assert.Contains(t, out, "https://sbmc.zalopay.vn/apps")
	assert.Contains(t, out, "https://sb-openapi.zalopay.vn/v2/")
}
