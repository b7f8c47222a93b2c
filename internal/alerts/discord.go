package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultWebhookTimeout bounds a single webhook POST.
const DefaultWebhookTimeout = 25 * time.Second

// DefaultUserAgent is sent with webhook requests.
const DefaultUserAgent = "dropwatch/1.0"

// DiscordTransport posts chunks to a Discord-compatible webhook.
type DiscordTransport struct {
	client     *resty.Client
	webhookURL string
}

type webhookPayload struct {
	Content string `json:"content"`
}

// NewDiscordTransport creates a transport for webhookURL. Retries are disabled:
// each chunk is attempted once per run.
func NewDiscordTransport(webhookURL string, timeout time.Duration) *DiscordTransport {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", DefaultUserAgent)
	return &DiscordTransport{client: client, webhookURL: webhookURL}
}

// Name identifies the transport.
func (t *DiscordTransport) Name() string {
	return "discord"
}

// Send posts content as one webhook message.
func (t *DiscordTransport) Send(ctx context.Context, content string) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Content: content}).
		Post(t.webhookURL)
	if err != nil {
		return &DeliveryError{Transport: t.Name(), Message: "webhook request failed", Cause: err}
	}
	if resp.IsError() {
		return &DeliveryError{
			Transport:  t.Name(),
			StatusCode: resp.StatusCode(),
			Message:    fmt.Sprintf("webhook returned HTTP status %d", resp.StatusCode()),
		}
	}
	return nil
}
