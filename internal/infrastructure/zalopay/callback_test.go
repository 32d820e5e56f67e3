package zalopay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/orris-inc/zlpay/internal/shared/errors"
	"github.com/orris-inc/zlpay/internal/shared/mac"
)

func TestVerifyCallback(t *testing.T) {
	data := `{"app_id":2553,"app_trans_id":"250101_abc","app_time":1735689600000,"app_user":"guest","amount":50000,"embed_data":"{\"redirecturl\":\"https://shop.example/r\",\"orderID\":42}","item":"[]","zp_trans_id":190613000002244,"server_time":1735689660000,"channel":38}`

	result, err := VerifyCallback(testKey2, data, mac.Sign(testKey2, data))
	require.NoError(t, err)

	assert.Equal(t, uint(42), result.EmbedData.OrderID)
	assert.Equal(t, "https://shop.example/r", result.EmbedData.RedirectURL)
	assert.Equal(t, "190613000002244", result.ZPTransID)
	assert.Equal(t, int64(50000), result.Amount)
	assert.Equal(t, 38, result.Channel)
	assert.Equal(t, data, result.RawData)
}

func TestVerifyCallback_StringOrderID(t *testing.T) {
	data := `{"embed_data":"{\"orderID\":\"42\"}","zp_trans_id":"T1"}`

	result, err := VerifyCallback(testKey2, data, mac.Sign(testKey2, data))

	require.NoError(t, err)
	assert.Equal(t, uint(42), result.EmbedData.OrderID)
	assert.Equal(t, "T1", result.ZPTransID)
}

func TestVerifyCallback_Rejections(t *testing.T) {
	good := `{"embed_data":"{\"orderID\":42}","zp_trans_id":"T1"}`

	tests := []struct {
		name      string
		data      string
		mac       string
		signature bool
	}{
		{"wrong key", good, mac.Sign(testKey1, good), true},
		{"tampered data", `{"embed_data":"{\"orderID\":43}","zp_trans_id":"T1"}`, mac.Sign(testKey2, good), true},
		{"empty mac", good, "", true},
		{"empty data", "", mac.Sign(testKey2, ""), false},
		{"data not json", "abc", mac.Sign(testKey2, "abc"), false},
		{"no embed data", `{"zp_trans_id":"T1"}`, mac.Sign(testKey2, `{"zp_trans_id":"T1"}`), false},
		{"embed not json", `{"embed_data":"x"}`, mac.Sign(testKey2, `{"embed_data":"x"}`), false},
		{"embed without order", `{"embed_data":"{}"}`, mac.Sign(testKey2, `{"embed_data":"{}"}`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyCallback(testKey2, tt.data, tt.mac)

			require.Error(t, err)
			if tt.signature {
				assert.True(t, apperrors.IsSignatureMismatchError(err))
			} else {
				assert.True(t, apperrors.IsInvalidRequestError(err))
			}
		})
	}
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
		D FlexInt    `json:"d"`
		E FlexInt    `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":190613000002244,"c":null,"d":"12","e":3}`), &v))

	assert.Equal(t, FlexString("x"), v.A)
	assert.Equal(t, FlexString("190613000002244"), v.B)
	assert.Equal(t, FlexString(""), v.C)
	assert.Equal(t, FlexInt(12), v.D)
	assert.Equal(t, FlexInt(3), v.E)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"d":"abc"}`), &v))
}
