package email

import (
	"context"
	"fmt"
	"html"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/orris-inc/zlpay/internal/application/payment/usecases"
	"github.com/orris-inc/zlpay/internal/shared/biztime"
	"github.com/orris-inc/zlpay/internal/shared/config"
	"github.com/orris-inc/zlpay/internal/shared/money"
)

// sender is the part of gomail.Dialer the notifier needs.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPPaymentNotifier mails settlement and refund notices to the shop admin.
type SMTPPaymentNotifier struct {
	config config.EmailConfig
	dialer sender
}

var _ usecases.PaymentNotifier = (*SMTPPaymentNotifier)(nil)

func NewSMTPPaymentNotifier(cfg config.EmailConfig) *SMTPPaymentNotifier {
	return &SMTPPaymentNotifier{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func (s *SMTPPaymentNotifier) NotifyPaymentSettled(_ context.Context, notice usecases.PaymentSettledNotice) error {
	amount := money.Format(notice.Amount, notice.Currency)
	subject := fmt.Sprintf("Order #%d paid via ZaloPay (%s)", notice.OrderID, amount)

	plainBody := fmt.Sprintf(`Order #%d has been paid.

Amount:         %s
Transaction ID: %s
Confirmed by:   %s
Time:           %s
`, notice.OrderID, amount, notice.TransactionID, notice.Source, formatTime(notice.SettledAt))

	htmlBody := fmt.Sprintf(`<html><body>
<h2>Order #%d has been paid</h2>
<table>
<tr><td>Amount</td><td>%s</td></tr>
<tr><td>Transaction ID</td><td>%s</td></tr>
<tr><td>Confirmed by</td><td>%s</td></tr>
<tr><td>Time</td><td>%s</td></tr>
</table>
</body></html>`, notice.OrderID, html.EscapeString(amount), html.EscapeString(notice.TransactionID),
		html.EscapeString(notice.Source), formatTime(notice.SettledAt))

	return s.sendEmail(subject, htmlBody, plainBody)
}

func (s *SMTPPaymentNotifier) NotifyRefunded(_ context.Context, notice usecases.RefundNotice) error {
	amount := money.Format(notice.Amount, notice.Currency)
	subject := fmt.Sprintf("Order #%d refunded %s", notice.OrderID, amount)

	reason := notice.Reason
	if reason == "" {
		reason = "-"
	}

	plainBody := fmt.Sprintf(`A refund was issued for order #%d.

Amount:           %s
Reason:           %s
Merchant refund:  %s
Time:             %s
`, notice.OrderID, amount, reason, notice.MerchantRefundID, formatTime(notice.RefundedAt))

	htmlBody := fmt.Sprintf(`<html><body>
<h2>Refund issued for order #%d</h2>
<table>
<tr><td>Amount</td><td>%s</td></tr>
<tr><td>Reason</td><td>%s</td></tr>
<tr><td>Merchant refund</td><td>%s</td></tr>
<tr><td>Time</td><td>%s</td></tr>
</table>
</body></html>`, notice.OrderID, html.EscapeString(amount), html.EscapeString(reason),
		html.EscapeString(notice.MerchantRefundID), formatTime(notice.RefundedAt))

	return s.sendEmail(subject, htmlBody, plainBody)
}

func (s *SMTPPaymentNotifier) sendEmail(subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", s.config.AdminAddress)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// formatTime shows the shop's local time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(biztime.Location()).Format("2006-01-02 15:04:05 MST")
}
