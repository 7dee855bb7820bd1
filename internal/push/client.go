package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/enigmahunt/enigmahunt/internal/services/notify"
)

// Client sends notifications to an HTTP push provider (FCM-style
// legacy send endpoint: one POST fans out to all device tokens)
type Client struct {
	url        string
	serverKey  string
	httpClient *http.Client
}

// NewClient creates a push provider client
func NewClient(url, serverKey string) *Client {
	return &Client{
		url:       url,
		serverKey: serverKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

var _ notify.Sender = (*Client)(nil)

// request mirrors the provider's multicast send payload
type request struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    notification      `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

// Send delivers one notification to all tokens in a single call
func (c *Client) Send(ctx context.Context, tokens []string, n notify.Notification) error {
	payload := request{
		RegistrationIDs: tokens,
		Notification: notification{
			Title: n.Title,
			Body:  n.Body,
			Sound: "default",
		},
		Data: n.Data,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push provider returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
