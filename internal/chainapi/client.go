// Package chainapi is the HTTP client for the settlement backend. Every
// endpoint answers {"success": bool, ..., "error": string}; an explicit
// success=false becomes a *Rejection so callers can classify the error text
// without ever forwarding it to the user.
package chainapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrMalformedResponse marks a backend reply that was not valid JSON.
// Callers distinguish it from transport failures when choosing reply text.
var ErrMalformedResponse = errors.New("malformed settlement response")

// Rejection carries a downstream-reported failure. The message is raw
// backend text and must pass through reply classification before rendering.
type Rejection struct {
	Endpoint string
	Message  string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s rejected: %s", r.Endpoint, r.Message)
}

// Client talks to the settlement backend.
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

// Balances holds the token and native balances for an address, as decimal
// strings produced by the backend.
type Balances struct {
	TXTC string
	ETH  string
}

type balanceResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Balances struct {
		TXTC string `json:"txtc"`
		ETH  string `json:"eth"`
	} `json:"balances"`
}

// Balance queries on-chain balances for a settlement address.
func (c *Client) Balance(ctx context.Context, address string) (Balances, error) {
	var resp balanceResponse
	if err := c.get(ctx, "/api/balance/"+url.PathEscape(address), &resp); err != nil {
		return Balances{}, err
	}
	if !resp.Success {
		return Balances{}, &Rejection{Endpoint: "balance", Message: resp.Error}
	}
	return Balances{TXTC: resp.Balances.TXTC, ETH: resp.Balances.ETH}, nil
}

type sendRequest struct {
	UserPrivateKey string `json:"userPrivateKey"`
	ToAddress      string `json:"toAddress"`
	Amount         string `json:"amount"`
}

type txResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	TxHash      string `json:"txHash"`
	EthReceived string `json:"ethReceived"`
	EthAmount   string `json:"ethAmount"`
}

// SendResult is the settled transfer outcome.
type SendResult struct {
	TxHash string
}

// Send moves tokens from the custodial key's address to a resolved recipient.
func (c *Client) Send(ctx context.Context, privateKeyHex, toAddress, amount string) (SendResult, error) {
	var resp txResponse
	err := c.post(ctx, "/api/send", sendRequest{
		UserPrivateKey: "0x" + privateKeyHex,
		ToAddress:      toAddress,
		Amount:         amount,
	}, &resp)
	if err != nil {
		return SendResult{}, err
	}
	if !resp.Success {
		return SendResult{}, &Rejection{Endpoint: "send", Message: resp.Error}
	}
	return SendResult{TxHash: resp.TxHash}, nil
}

type swapRequest struct {
	UserPrivateKey string `json:"userPrivateKey"`
	TokenAmount    string `json:"tokenAmount"`
	MinEthOut      string `json:"minEthOut"`
}

// SwapResult is the settled swap outcome.
type SwapResult struct {
	EthReceived string
	TxHash      string
}

// Swap exchanges tokens for the native asset.
func (c *Client) Swap(ctx context.Context, privateKeyHex, tokenAmount string) (SwapResult, error) {
	var resp txResponse
	err := c.post(ctx, "/api/swap", swapRequest{
		UserPrivateKey: "0x" + privateKeyHex,
		TokenAmount:    tokenAmount,
		MinEthOut:      "0",
	}, &resp)
	if err != nil {
		return SwapResult{}, err
	}
	if !resp.Success {
		return SwapResult{}, &Rejection{Endpoint: "swap", Message: resp.Error}
	}
	return SwapResult{EthReceived: resp.EthReceived, TxHash: resp.TxHash}, nil
}

type redeemRequest struct {
	VoucherCode string `json:"voucherCode"`
	UserAddress string `json:"userAddress"`
}

// RedeemResult is the settled voucher redemption outcome.
type RedeemResult struct {
	EthAmount string
	TxHash    string
}

// Redeem exchanges a voucher code for settled value credited to address.
func (c *Client) Redeem(ctx context.Context, voucherCode, address string) (RedeemResult, error) {
	var resp txResponse
	err := c.post(ctx, "/api/redeem", redeemRequest{VoucherCode: voucherCode, UserAddress: address}, &resp)
	if err != nil {
		return RedeemResult{}, err
	}
	if !resp.Success {
		return RedeemResult{}, &Rejection{Endpoint: "redeem", Message: resp.Error}
	}
	return RedeemResult{EthAmount: resp.EthAmount, TxHash: resp.TxHash}, nil
}

type buyRequest struct {
	Phone  string `json:"phone"`
	Amount string `json:"amount"`
}

// Buy requests a token purchase billed against the sender's airtime.
// Completion is reported out-of-band; callers fire and forget.
func (c *Client) Buy(ctx context.Context, phone, amount string) error {
	var resp txResponse
	if err := c.post(ctx, "/api/buy", buyRequest{Phone: phone, Amount: amount}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Rejection{Endpoint: "buy", Message: resp.Error}
	}
	return nil
}

type bridgeRequest struct {
	UserPrivateKey string `json:"userPrivateKey"`
	Amount         string `json:"amount"`
	Token          string `json:"token"`
	FromChain      string `json:"fromChain"`
	ToChain        string `json:"toChain"`
}

// Bridge moves tokens between chains. Completion is reported out-of-band;
// callers fire and forget.
func (c *Client) Bridge(ctx context.Context, privateKeyHex, amount, token, fromChain, toChain string) error {
	var resp txResponse
	err := c.post(ctx, "/api/bridge", bridgeRequest{
		UserPrivateKey: "0x" + privateKeyHex,
		Amount:         amount,
		Token:          token,
		FromChain:      fromChain,
		ToChain:        toChain,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &Rejection{Endpoint: "bridge", Message: resp.Error}
	}
	return nil
}

type nameCheckResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Available bool   `json:"available"`
}

// CheckName reports whether a dotted name or alias is free to claim.
func (c *Client) CheckName(ctx context.Context, name string) (bool, error) {
	var resp nameCheckResponse
	if err := c.get(ctx, "/api/name/check/"+url.PathEscape(name), &resp); err != nil {
		return false, err
	}
	if !resp.Success {
		return false, &Rejection{Endpoint: "name/check", Message: resp.Error}
	}
	return resp.Available, nil
}

type nameRegisterRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type nameRegisterResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RegisterName claims a name for a settlement address.
func (c *Client) RegisterName(ctx context.Context, name, address string) error {
	var resp nameRegisterResponse
	if err := c.post(ctx, "/api/name/register", nameRegisterRequest{Name: name, Address: address}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &Rejection{Endpoint: "name/register", Message: resp.Error}
	}
	return nil
}

type nameResolveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Address string `json:"address"`
}

// ResolveName maps a dotted name to its settlement address. An empty address
// on success means the name is unregistered.
func (c *Client) ResolveName(ctx context.Context, name string) (string, error) {
	var resp nameResolveResponse
	if err := c.get(ctx, "/api/name/resolve/"+url.PathEscape(name), &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &Rejection{Endpoint: "name/resolve", Message: resp.Error}
	}
	return resp.Address, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call settlement backend: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
