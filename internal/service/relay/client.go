package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zhouzirui/z-chat/backend/internal/config"
)

var ErrNotConfigured = errors.New("email relay credentials not configured")

// maxResponseBytes caps how much of an upstream reply is mirrored back.
const maxResponseBytes = 1 << 20

// Submission is the contact-form payload accepted by the relay.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// TemplateParams are the variables rendered by the email template.
type TemplateParams struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Message   string `json:"message"`
}

// sendRequest is the EmailJS send body.
type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// UpstreamError carries a non-2xx reply from the email provider verbatim.
type UpstreamError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *UpstreamError) Error() string {
	if body := bytes.TrimSpace(e.Body); len(body) == 0 || string(body) == "null" {
		return fmt.Sprintf("email api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("email api returned status %d: %s", e.StatusCode, string(e.Body))
}

// Client forwards submissions to the EmailJS send endpoint.
type Client struct {
	cfg        config.RelayConfig
	httpClient *http.Client
}

// NewClient builds a client from relay configuration. A nil httpClient uses
// one with the configured timeout.
func NewClient(cfg config.RelayConfig, httpClient *http.Client) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = config.DefaultEmailEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Send reshapes the submission into a template send and posts it once. On
// success it returns the upstream body; a non-2xx reply is an *UpstreamError.
func (c *Client) Send(ctx context.Context, sub Submission) (json.RawMessage, error) {
	if !c.cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(sendRequest{
		ServiceID:   c.cfg.ServiceID,
		TemplateID:  c.cfg.TemplateID,
		UserID:      c.cfg.PublicKey,
		AccessToken: c.cfg.PrivateKey,
		TemplateParams: TemplateParams{
			FromName:  sub.Name,
			FromEmail: sub.Email,
			Message:   sub.Message,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("email api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read email api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: AsJSON(body)}
	}
	return AsJSON(body), nil
}

// AsJSON returns body unchanged when it is valid JSON and as a JSON string
// otherwise. EmailJS answers plain text such as "OK".
func AsJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(strings.TrimSpace(string(trimmed)))
	return quoted
}
