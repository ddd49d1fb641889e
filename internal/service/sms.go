package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hrportal/onboarding-api/config"
	"hrportal/onboarding-api/internal/auth"
)

// SMSGateway posts text messages to an HTTP gateway as
// {"from": ..., "to": ..., "text": ...} with a bearer API key
type SMSGateway struct {
	url    string
	apiKey string
	sender string
	client *http.Client
	now    func() time.Time
}

func NewSMSGateway(c config.SMSConfig) *SMSGateway {
	return &SMSGateway{
		url:    c.URL,
		apiKey: c.APIKey,
		sender: c.Sender,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

type smsPayload struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Text string `json:"text"`
}

func (g *SMSGateway) Send(ctx context.Context, n auth.Notification) error {
	msg, err := Render(n, g.now())
	if err != nil {
		return err
	}

	body, err := json.Marshal(smsPayload{
		From: g.sender,
		To:   n.To,
		Text: msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request, %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach sms gateway, %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway responded with %d: %s", resp.StatusCode, bytes.TrimSpace(b))
	}

	return nil
}
