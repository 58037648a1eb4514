// internal/pkg/email/api_providers.go
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// sendResendEmail sends email through the Resend HTTP API
func (s *EmailService) sendResendEmail(ctx context.Context, email *Email) error {
	cfg := s.config.Email
	if cfg.APIKey == "" {
		return fmt.Errorf("resend API key not configured")
	}

	payload := map[string]interface{}{
		"from":    fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		"to":      email.To,
		"subject": email.Subject,
		"html":    email.HTMLContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var respBody bytes.Buffer
		respBody.ReadFrom(resp.Body)
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, respBody.String())
	}
	return nil
}
