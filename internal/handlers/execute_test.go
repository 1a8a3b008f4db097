package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Giftea/skillbazaar/internal/payments"
	"github.com/Giftea/skillbazaar/internal/services"
)

func TestExecuteAccountsUsage(t *testing.T) {
	pay := &stubPayments{}
	env := newTestEnv(t, pay)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/skills/register", echoSkillPayload()).Code)

	w := env.do(t, http.MethodPost, "/skills/echo-skill/execute", map[string]any{"param": "0xCAFE"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, 0.01, body["paid_usd"])
	require.Equal(t, "echo-skill", body["skill"])
	require.Equal(t, map[string]any{"ok": true}, body["result"])

	require.Equal(t, 1, pay.callCount())
	pay.mu.Lock()
	require.Equal(t, "http://localhost:9001/run/0xCAFE", pay.calls[0])
	pay.mu.Unlock()

	record := env.do(t, http.MethodGet, "/skills/echo-skill", nil)
	require.Equal(t, float64(1), decodeBody(t, record)["usage_count"])
}

func TestExecuteWithoutBody(t *testing.T) {
	pay := &stubPayments{}
	env := newTestEnv(t, pay)

	payload := echoSkillPayload()
	payload["name"] = "clock-skill"
	payload["endpoint"] = "http://localhost:9001/now"

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/skills/register", payload).Code)

	w := env.do(t, http.MethodPost, "/skills/clock-skill/execute", nil)
	require.Equal(t, http.StatusOK, w.Code)

	pay.mu.Lock()
	require.Equal(t, "http://localhost:9001/now", pay.calls[0])
	pay.mu.Unlock()
}

func TestExecuteUnknownSkillSkipsPayment(t *testing.T) {
	pay := &stubPayments{}
	env := newTestEnv(t, pay)

	w := env.do(t, http.MethodPost, "/skills/ghost-skill/execute", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Skill not found", decodeBody(t, w)["error"])
	require.Zero(t, pay.callCount())
}

func TestExecuteOfflineUpstream(t *testing.T) {
	pay := &stubPayments{err: payments.ErrUpstreamUnreachable}
	env := newTestEnv(t, pay)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/skills/register", echoSkillPayload()).Code)

	w := env.do(t, http.MethodPost, "/skills/echo-skill/execute", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, "Skill server offline", body["error"])
	require.Equal(t, "echo-skill", body["skill"])
	require.Equal(t, float64(9001), body["port"])

	record := env.do(t, http.MethodGet, "/skills/echo-skill", nil)
	require.Equal(t, float64(0), decodeBody(t, record)["usage_count"])
}

func TestExecuteTimeout(t *testing.T) {
	pay := &stubPayments{delay: 200 * time.Millisecond}
	env := newTestEnv(t, pay, withExecutorOptions(services.WithExecutionTimeout(20*time.Millisecond)))
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/skills/register", echoSkillPayload()).Code)

	w := env.do(t, http.MethodPost, "/skills/echo-skill/execute", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Execution failed", decodeBody(t, w)["error"])
}

func TestExecuteGenericFailure(t *testing.T) {
	pay := &stubPayments{err: assertionError("settlement rejected")}
	env := newTestEnv(t, pay)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/skills/register", echoSkillPayload()).Code)

	w := env.do(t, http.MethodPost, "/skills/echo-skill/execute", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// Upstream detail never leaks into the client body.
	require.Equal(t, "Execution failed", decodeBody(t, w)["error"])
	require.NotContains(t, w.Body.String(), "settlement rejected")
}

type assertionError string

func (e assertionError) Error() string { return string(e) }
