package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Giftea/skillbazaar/internal/cache"
	"github.com/Giftea/skillbazaar/internal/services"
	appErrors "github.com/Giftea/skillbazaar/pkg/errors"
	"github.com/Giftea/skillbazaar/pkg/response"
)

const analyticsCacheKey = "analytics"

// AnalyticsHandler serves aggregated marketplace statistics.
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	cache     *cache.Memory
	ttl       time.Duration
}

// NewAnalyticsHandler constructs an analytics handler.
func NewAnalyticsHandler(analytics *services.AnalyticsService, store *cache.Memory, ttl time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, cache: store, ttl: ttl}
}

// Summary returns the catalog-wide aggregates. The snapshot is recomputed
// from the store at most once per TTL window.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	body, _, err := h.cache.GetOrCompute(analyticsCacheKey, h.ttl, func() ([]byte, error) {
		summary, err := h.analytics.Compute(c.Request.Context())
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	})
	if err != nil {
		response.Error(c, appErrors.ErrStore.WithInternal(err))
		return
	}

	response.CachedJSON(c, body, int(h.ttl.Seconds()))
}
