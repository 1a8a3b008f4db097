package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Giftea/skillbazaar/internal/cache"
	testutil "github.com/Giftea/skillbazaar/internal/database/testutil"
	"github.com/Giftea/skillbazaar/internal/payments"
	"github.com/Giftea/skillbazaar/internal/services"
)

// stubPayments is a scripted payment collaborator.
type stubPayments struct {
	mu      sync.Mutex
	calls   []string
	result  *payments.Result
	err     error
	delay   time.Duration
	balance *payments.Balance
	balErr  error
	address string
}

func (s *stubPayments) PayAndCall(ctx context.Context, url, method string, maxAmountMicro int64) (*payments.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &payments.Result{
		StatusCode: http.StatusOK,
		Body:       json.RawMessage(`{"ok":true}`),
		PaidMicro:  maxAmountMicro,
	}, nil
}

func (s *stubPayments) WalletBalance(ctx context.Context, address string) (*payments.Balance, error) {
	if s.balErr != nil {
		return nil, s.balErr
	}
	if s.balance != nil {
		return s.balance, nil
	}
	return &payments.Balance{Address: address, USDC: "0"}, nil
}

func (s *stubPayments) Address() string {
	if s.address != "" {
		return s.address
	}
	return "0xBROKER"
}

func (s *stubPayments) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// fakeClock drives cache expiry without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type testEnv struct {
	router   *gin.Engine
	skills   *services.SkillService
	payments *stubPayments
	clock    *fakeClock
}

type envOption func(*envConfig)

type envConfig struct {
	executorOpts []services.ExecutorOption
	probeTimeout time.Duration
}

func withExecutorOptions(opts ...services.ExecutorOption) envOption {
	return func(cfg *envConfig) { cfg.executorOpts = opts }
}

func newTestEnv(t *testing.T, pay *stubPayments, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := envConfig{probeTimeout: 500 * time.Millisecond}
	for _, opt := range opts {
		opt(&cfg)
	}

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	skills, err := services.NewSkillService(db)
	require.NoError(t, err)
	analytics, err := services.NewAnalyticsService(skills)
	require.NoError(t, err)
	executor, err := services.NewExecutorService(skills, pay, cfg.executorOpts...)
	require.NoError(t, err)
	health := services.NewHealthService(cfg.probeTimeout)

	clock := newFakeClock()
	store := cache.NewMemory(cache.WithClock(clock.Now))

	skillHandler := NewSkillHandler(skills, store, 5*time.Second)
	executeHandler := NewExecuteHandler(executor)
	healthHandler := NewSkillHealthHandler(skills, health)
	analyticsHandler := NewAnalyticsHandler(analytics, store, 10*time.Second)
	walletHandler := NewWalletHandler(pay, store, 15*time.Second)
	rootHandler := NewRootHandler(skills)

	r := gin.New()
	r.GET("/", rootHandler.Info)
	r.GET("/skills", skillHandler.List)
	r.GET("/skills/:name", skillHandler.Get)
	r.GET("/skills/:name/info", skillHandler.Info)
	r.POST("/skills/register", skillHandler.Register)
	r.POST("/skills/:name/execute", executeHandler.Execute)
	r.GET("/skills/:name/health", healthHandler.Probe)
	r.GET("/analytics", analyticsHandler.Summary)
	r.GET("/wallet/balance", walletHandler.Balance)
	r.GET("/health", ServiceHealth(db))

	return &testEnv{router: r, skills: skills, payments: pay, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func echoSkillPayload() map[string]any {
	return map[string]any{
		"name":             "echo-skill",
		"description":      "echoes its input back",
		"endpoint":         "http://localhost:9001/run/:address",
		"price_usd":        0.01,
		"publisher_wallet": "0xPUBLISHER",
		"category":         "utility",
		"port":             9001,
	}
}
