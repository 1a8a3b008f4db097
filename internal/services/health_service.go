package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Giftea/skillbazaar/internal/models"
)

const defaultProbeTimeout = 2 * time.Second

// HealthService issues bare connectivity probes against skill servers.
type HealthService struct {
	client *http.Client
}

// NewHealthService constructs a prober with the given bound; zero or negative
// falls back to the 2 second default.
func NewHealthService(timeout time.Duration) *HealthService {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &HealthService{
		client: &http.Client{Timeout: timeout},
	}
}

// ProbeStatus is the outcome of one liveness probe.
type ProbeStatus struct {
	Online bool `json:"online"`
}

// Probe checks whether the skill's server answers HTTP at all on its declared
// port. Any response, a 402 payment challenge or a 404 included, counts as
// online; timeouts, refused connections, and DNS failures count as offline.
// Probe never returns an error to its caller.
func (s *HealthService) Probe(ctx context.Context, skill *models.Skill) ProbeStatus {
	if s == nil || skill == nil {
		return ProbeStatus{Online: false}
	}
	ctx = ensuredContext(ctx)

	base := fmt.Sprintf("http://%s:%d", probeHost(skill.Endpoint), skill.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return ProbeStatus{Online: false}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return ProbeStatus{Online: false}
	}
	_ = resp.Body.Close()

	return ProbeStatus{Online: true}
}

// probeHost derives the probe target host from the skill's endpoint template,
// falling back to localhost for co-located first-party skills.
func probeHost(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Hostname() == "" {
		return "localhost"
	}
	return parsed.Hostname()
}
