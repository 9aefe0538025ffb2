// Package service provides the outbound email capability and pure rendering
// of notification content.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/allisson/fulfillment/internal/notification/domain"
)

// maxErrorBodyBytes bounds how much of a provider error response is kept.
const maxErrorBodyBytes = 512

// Mailer is the external email capability: one provider call per Send.
// Implementations must respect the context deadline and must not retry.
type Mailer interface {
	Send(ctx context.Context, message *domain.Message) error
}

// HTTPMailer sends email through an HTTP JSON provider API (Resend-style).
// The credential is held by the instance and injected where needed; there is
// no process-wide client.
type HTTPMailer struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPMailer creates a mailer for the given provider endpoint and credential.
func NewHTTPMailer(apiURL, apiKey string) *HTTPMailer {
	return &HTTPMailer{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// sendRequest is the provider API request body.
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers one message. Returns an error on transport failure or any
// non-2xx provider response; the caller inspects the outcome, nothing is
// retried here.
func (m *HTTPMailer) Send(ctx context.Context, message *domain.Message) error {
	payload, err := json.Marshal(sendRequest{
		From:    message.From,
		To:      []string{message.To},
		Subject: message.Subject,
		HTML:    message.HTMLBody,
	})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider call failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("provider rejected send: status %d: %s", resp.StatusCode, body)
	}

	return nil
}
