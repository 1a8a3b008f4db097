package payments

import (
	"context"
	"encoding/json"
	"time"
)

// Result is the outcome of one payment-gated call: the downstream response
// body plus the amount actually settled, in USDC micro-units.
type Result struct {
	StatusCode int
	Body       json.RawMessage
	PaidMicro  int64
	Latency    time.Duration
}

// Balance reports the broker wallet's spendable USDC balance.
type Balance struct {
	Address string
	USDC    string
}

// Client is the payment collaborator boundary. The handshake itself
// (challenge/response, signing, settlement) is opaque to the marketplace:
// callers hand over a target URL and a spending ceiling and receive the
// response body and the settled amount.
type Client interface {
	// PayAndCall invokes url with the given method, authorising at most
	// maxAmountMicro micro-USDC for the x402 handshake.
	PayAndCall(ctx context.Context, url, method string, maxAmountMicro int64) (*Result, error)

	// WalletBalance fetches the USDC balance of address. An empty address
	// defaults to the broker's own wallet.
	WalletBalance(ctx context.Context, address string) (*Balance, error)

	// Address returns the broker's wallet address.
	Address() string
}
