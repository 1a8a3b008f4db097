package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Giftea/skillbazaar/internal/cache"
	"github.com/Giftea/skillbazaar/internal/payments"
	appErrors "github.com/Giftea/skillbazaar/pkg/errors"
	"github.com/Giftea/skillbazaar/pkg/response"
)

const balanceCacheKey = "wallet:balance"

// WalletHandler exposes the broker wallet's USDC balance.
type WalletHandler struct {
	payments payments.Client
	cache    *cache.Memory
	ttl      time.Duration
}

// NewWalletHandler constructs a wallet handler.
func NewWalletHandler(client payments.Client, store *cache.Memory, ttl time.Duration) *WalletHandler {
	return &WalletHandler{payments: client, cache: store, ttl: ttl}
}

// Balance returns the broker wallet balance. Gateway round trips are
// expensive, so responses are cached.
func (h *WalletHandler) Balance(c *gin.Context) {
	body, _, err := h.cache.GetOrCompute(balanceCacheKey, h.ttl, func() ([]byte, error) {
		address := h.payments.Address()
		balance, err := h.payments.WalletBalance(c.Request.Context(), address)
		if err != nil {
			return nil, err
		}
		return json.Marshal(gin.H{
			"balance_usdc": balance.USDC,
			"address":      balance.Address,
		})
	})
	if err != nil {
		response.Error(c, appErrors.New("WALLET_BALANCE_ERROR", "Failed to fetch wallet balance", http.StatusInternalServerError).WithInternal(err))
		return
	}

	response.CachedJSON(c, body, int(h.ttl.Seconds()))
}
