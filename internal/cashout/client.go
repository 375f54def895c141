// Package cashout is the HTTP client for the stablecoin cashout service.
package cashout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Rejection carries a cashout-service-reported failure.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("cashout rejected: %s", r.Message)
}

// Client talks to the cashout service.
type Client struct {
	http    *http.Client
	baseURL string
}

// New builds a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type cashoutRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Token   string `json:"token"`
}

type cashoutResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Request asks the service to pay out amount of token held at address to the
// user's off-ramp. Completion is reported out-of-band; callers fire and
// forget.
func (c *Client) Request(ctx context.Context, phone, address, amount, token string) error {
	payload, err := json.Marshal(cashoutRequest{Phone: phone, Address: address, Amount: amount, Token: token})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/cashout", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call cashout service: %w", err)
	}
	defer resp.Body.Close()

	var body cashoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode cashout response: %w", err)
	}
	if !body.Success {
		return &Rejection{Message: body.Error}
	}
	return nil
}
