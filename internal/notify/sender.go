// Package notify delivers transactional WhatsApp messages through an
// external messaging gateway. Delivery is best-effort everywhere it is used.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Sender delivers a text message to a phone number. The boolean reports
// whether the gateway accepted the message.
type Sender interface {
	Send(ctx context.Context, phone, message string) (bool, error)
}

type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type sendBody struct {
	Target      string `json:"target"`
	Message     string `json:"message"`
	CountryCode string `json:"countryCode"`
}

type sendResult struct {
	Status bool `json:"status"`
}

func (c *Client) Send(ctx context.Context, phone, message string) (bool, error) {
	b, err := json.Marshal(sendBody{Target: phone, Message: message, CountryCode: "62"})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(b))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	var result sendResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.Status, nil
}
