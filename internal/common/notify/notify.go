// Package notify posts rebuild alerts to a webhook. With no URL
// configured every call is a no-op.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type WebhookMessage struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       int       `json:"color"`
	Timestamp   time.Time `json:"timestamp"`
	Fields      []Field   `json:"fields,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type Client struct {
	webhookURL string
	httpClient *http.Client
}

func NewClient(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SendMessage(msg WebhookMessage) error {
	if c.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook message: %w", err)
	}

	req, err := http.NewRequest("POST", c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status: %d", resp.StatusCode)
	}

	return nil
}

// SendRebuildFailure reports a failed snapshot rebuild. The previous
// snapshot stays live, so this is a warning, not an outage.
func (c *Client) SendRebuildFailure(sourceName string, err error) error {
	embed := Embed{
		Title:       "Route rebuild failed",
		Description: err.Error(),
		Color:       0xFF0000,
		Timestamp:   time.Now(),
		Fields: []Field{
			{Name: "source", Value: sourceName, Inline: true},
		},
	}
	return c.SendMessage(WebhookMessage{Embeds: []Embed{embed}})
}

// SendRebuildSuccess reports a published snapshot with its load counters.
func (c *Client) SendRebuildSuccess(sourceName, snapshotID string, trains int) error {
	embed := Embed{
		Title:       "Route snapshot published",
		Description: fmt.Sprintf("%d trains retained", trains),
		Color:       0x2ECC71,
		Timestamp:   time.Now(),
		Fields: []Field{
			{Name: "source", Value: sourceName, Inline: true},
			{Name: "snapshot_id", Value: snapshotID, Inline: true},
		},
	}
	return c.SendMessage(WebhookMessage{Embeds: []Embed{embed}})
}
