package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GatewayConfig holds connection parameters for the x402 payment gateway
// sidecar, which owns the signing key and performs the handshake on the
// broker's behalf.
type GatewayConfig struct {
	BaseURL string
	Address string // broker wallet address
	APIKey  string
	Timeout time.Duration
}

const defaultGatewayTimeout = 30 * time.Second

// GatewayClient implements Client against the payment gateway's HTTP API.
type GatewayClient struct {
	baseURL string
	address string
	apiKey  string
	http    *http.Client
}

// NewGatewayClient validates the configuration and constructs a client.
func NewGatewayClient(cfg GatewayConfig) (*GatewayClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("payments: gateway base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("payments: invalid gateway base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	return &GatewayClient{
		baseURL: base,
		address: strings.TrimSpace(cfg.Address),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Address returns the broker's wallet address.
func (c *GatewayClient) Address() string {
	return c.address
}

type payRequest struct {
	URL       string `json:"url"`
	Method    string `json:"method"`
	MaxAmount string `json:"max_amount"`
}

type payResponse struct {
	Status     int             `json:"status"`
	Data       json.RawMessage `json:"data"`
	PaidAmount string          `json:"paid_amount"`
	LatencyMS  int64           `json:"latency_ms"`
	Error      string          `json:"error"`
}

// PayAndCall asks the gateway to call url, settling up to maxAmountMicro
// micro-USDC via the x402 handshake. Transport failures reaching the skill are
// relayed by the gateway as 502/503 and surfaced as ErrUpstreamUnreachable.
func (c *GatewayClient) PayAndCall(ctx context.Context, target, method string, maxAmountMicro int64) (*Result, error) {
	if method == "" {
		method = http.MethodGet
	}

	payload, err := json.Marshal(payRequest{
		URL:       target,
		Method:    method,
		MaxAmount: strconv.FormatInt(maxAmountMicro, 10),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pay", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// One key per paid call so gateway retries never double-settle.
	req.Header.Set("Idempotency-Key", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if IsUnreachable(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var decoded payResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("payments: malformed gateway response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		paid, _ := strconv.ParseInt(decoded.PaidAmount, 10, 64)
		latency := time.Duration(decoded.LatencyMS) * time.Millisecond
		if latency <= 0 {
			latency = time.Since(started)
		}
		return &Result{
			StatusCode: decoded.Status,
			Body:       decoded.Data,
			PaidMicro:  paid,
			Latency:    latency,
		}, nil
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnreachable, decoded.Error)
	default:
		return nil, fmt.Errorf("payments: gateway returned %d: %s", resp.StatusCode, decoded.Error)
	}
}

type balanceResponse struct {
	Data struct {
		Balances map[string]string `json:"balances"`
		USDC     string            `json:"usdc"`
	} `json:"data"`
	Error string `json:"error"`
}

// WalletBalance fetches the USDC balance for address from the gateway. The
// gateway reports either a balances map or a flat usdc field depending on its
// version; both shapes are accepted.
func (c *GatewayClient) WalletBalance(ctx context.Context, address string) (*Balance, error) {
	if strings.TrimSpace(address) == "" {
		address = c.address
	}

	endpoint := fmt.Sprintf("%s/v1/balance?address=%s", c.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payments: balance lookup returned %d", resp.StatusCode)
	}

	var decoded balanceResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("payments: malformed balance response: %w", err)
	}

	usdc := decoded.Data.Balances["USDC"]
	if usdc == "" {
		usdc = decoded.Data.USDC
	}
	if usdc == "" {
		usdc = "0"
	}

	return &Balance{Address: address, USDC: usdc}, nil
}
