package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "/tmp/skillbazaar-test.db", cfg.Database.Path)

	require.Equal(t, 2*time.Second, cfg.Cache.SkillsTTL)
	require.Equal(t, 4*time.Second, cfg.Cache.AnalyticsTTL)
	require.Equal(t, 6*time.Second, cfg.Cache.BalanceTTL)

	require.Equal(t, "http://gateway.internal:8402", cfg.Payment.GatewayURL)
	require.Equal(t, "0xABCDEF0123456789", cfg.Payment.Address)
	require.Equal(t, "test-key", cfg.Payment.APIKey)
	require.Equal(t, 5*time.Second, cfg.Payment.Timeout)

	require.Equal(t, 3*time.Second, cfg.Execution.Timeout)

	require.Equal(t, time.Second, cfg.Health.ProbeTimeout)
	require.False(t, cfg.Health.SweepEnabled)
	require.Equal(t, "@every 30s", cfg.Health.SweepSchedule)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/internal/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/skills.db", cfg.Database.Path)
	require.Equal(t, 5*time.Second, cfg.Cache.SkillsTTL)
	require.Equal(t, 10*time.Second, cfg.Cache.AnalyticsTTL)
	require.Equal(t, 15*time.Second, cfg.Cache.BalanceTTL)
	require.Equal(t, 10*time.Second, cfg.Execution.Timeout)
	require.Equal(t, 2*time.Second, cfg.Health.ProbeTimeout)
	require.True(t, cfg.Health.SweepEnabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SKILLBAZAAR_SERVER_PORT", "4500")
	t.Setenv("SKILLBAZAAR_PAYMENT_ADDRESS", "0xFEEDBEEF")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 4500, cfg.Server.Port)
	require.Equal(t, "0xFEEDBEEF", cfg.Payment.Address)
}

func TestConfigValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg.Server.Port = 3000
	cfg.Payment.GatewayURL = "  "
	require.Error(t, cfg.Validate())
}
