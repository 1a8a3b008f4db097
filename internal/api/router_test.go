package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Giftea/skillbazaar/internal/app"
	testutil "github.com/Giftea/skillbazaar/internal/database/testutil"
	"github.com/Giftea/skillbazaar/internal/payments"
)

type nullPayments struct{}

func (nullPayments) PayAndCall(context.Context, string, string, int64) (*payments.Result, error) {
	return nil, payments.ErrUpstreamUnreachable
}

func (nullPayments) WalletBalance(context.Context, string) (*payments.Balance, error) {
	return &payments.Balance{Address: "0xBROKER", USDC: "0"}, nil
}

func (nullPayments) Address() string { return "0xBROKER" }

func testConfig() *app.Config {
	return &app.Config{
		Server:    app.ServerConfig{Port: 3000, LogLevel: "info"},
		Cache:     app.CacheConfig{SkillsTTL: 5 * time.Second, AnalyticsTTL: 10 * time.Second, BalanceTTL: 15 * time.Second},
		Payment:   app.PaymentConfig{GatewayURL: "http://127.0.0.1:8402"},
		Execution: app.ExecutionConfig{Timeout: time.Second},
		Health:    app.HealthConfig{ProbeTimeout: 500 * time.Millisecond},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
}

func TestRouterRegistersMarketplaceRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate(), testutil.WithSeedSkills())
	router, err := NewRouter(db, nullPayments{}, testConfig())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/skills", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "contract-auditor")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/skills/ens-resolver", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "SkillBazaar")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/analytics", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/wallet/balance", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouterMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	router, err := NewRouter(db, nullPayments{}, testConfig())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "skillbazaar_") ||
		strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestRouterUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	router, err := NewRouter(db, nullPayments{}, testConfig())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "route /nope not found")
}

func TestRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(nil, nullPayments{}, testConfig())
	require.Error(t, err)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	_, err = NewRouter(db, nil, testConfig())
	require.Error(t, err)

	_, err = NewRouter(db, nullPayments{}, nil)
	require.Error(t, err)
}
