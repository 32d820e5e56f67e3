package email

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/shared/config"
)

type recordingSender struct {
	messages []*gomail.Message
	err      error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.messages = append(r.messages, m...)
	return r.err
}

func newTestNotifier(s sender) *SMTPPaymentNotifier {
	n := NewSMTPPaymentNotifier(config.EmailConfig{
		SMTPHost:     "smtp.example",
		SMTPPort:     587,
		FromAddress:  "noreply@shop.example",
		FromName:     "Shop",
		AdminAddress: "owner@shop.example",
	})
	n.dialer = s
	return n
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSMTPPaymentNotifier_NotifyPaymentSettled(t *testing.T) {
	s := &recordingSender{}
	n := newTestNotifier(s)

	err := n.NotifyPaymentSettled(context.Background(), usecases.PaymentSettledNotice{
		OrderID:       42,
		Amount:        50000,
		Currency:      "VND",
		TransactionID: "190613000002244",
		Source:        usecases.SourceWebhook,
		SettledAt:     time.Date(2025, 1, 1, 3, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, s.messages, 1)

	msg := s.messages[0]
	assert.Equal(t, []string{"owner@shop.example"}, msg.GetHeader("To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.GetHeader("Subject")[0])
	require.NoError(t, err)
	assert.Equal(t, "Order #42 paid via ZaloPay (50.000VND)", subject)

	body := render(t, msg)
	assert.Contains(t, body, "190613000002244")
	assert.Contains(t, body, "2025-01-01 10:00:00")
}

func TestSMTPPaymentNotifier_NotifyRefunded(t *testing.T) {
	s := &recordingSender{}
	n := newTestNotifier(s)

	err := n.NotifyRefunded(context.Background(), usecases.RefundNotice{
		OrderID:          42,
		Amount:           20000,
		Currency:         "VND",
		Reason:           "<b>damaged</b>",
		MerchantRefundID: "250101_2553_xyz",
	})
	require.NoError(t, err)
	require.Len(t, s.messages, 1)

	body := render(t, s.messages[0])
	assert.Contains(t, body, "250101_2553_xyz")
	assert.Contains(t, body, "&lt;b&gt;damaged&lt;/b&gt;")
}

func TestSMTPPaymentNotifier_SendFailure(t *testing.T) {
	n := newTestNotifier(&recordingSender{err: errors.New("connection refused")})

	err := n.NotifyRefunded(context.Background(), usecases.RefundNotice{OrderID: 42, Amount: 1000, Currency: "VND"})

	assert.ErrorContains(t, err, "connection refused")
}
