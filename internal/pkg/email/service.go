// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/streetr/ordering-backend/internal/config"
)

// EmailService handles all email operations. Sending is always best effort
// for callers: an order stands whether or not its confirmation mail goes out.
type EmailService struct {
	config *config.Config
	client *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.Email.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Email.Provider)
	}
}

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(`
<h2>Thanks for your order, {{.UserName}}!</h2>
<p>Order <strong>{{.OrderNumber}}</strong> is confirmed and the seller is preparing it.</p>
<table>
{{range .Items}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{.Price}}</td></tr>
{{end}}</table>
<p>Total paid: <strong>{{.OrderTotal}}</strong></p>
{{if .IsDelivery}}<p>Your order will be delivered to your address.</p>
{{else}}<p>Show this pickup code at the stall: <strong>{{.PickupCode}}</strong></p>{{end}}
`))

// SendOrderConfirmationEmail sends the order confirmation with the pickup code
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, data OrderConfirmationData) error {
	var body bytes.Buffer
	if err := orderConfirmationTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Order Confirmation - %s", data.OrderNumber),
		HTMLContent: body.String(),
		Type:        EmailTypeOrderConfirmation,
	})
}
