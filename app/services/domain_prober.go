package services

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// DomainProber checks whether a custom domain answers HTTP requests.
// Verification is reachability only; certificate provisioning is handled
// by the fronting proxy, not this service.
type DomainProber interface {
	Probe(ctx context.Context, hostname string) error
}

// HTTPDomainProber implements DomainProber with a HEAD request
type HTTPDomainProber struct {
	client *http.Client
}

// NewDomainProber creates a new HTTP domain prober
func NewDomainProber(timeout time.Duration) DomainProber {
	return &HTTPDomainProber{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (p *HTTPDomainProber) Probe(ctx context.Context, hostname string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+hostname+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("domain %s is not reachable: %w", hostname, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("domain %s answered with status %d", hostname, resp.StatusCode)
	}
	return nil
}

// MockDomainProber implements DomainProber for testing
type MockDomainProber struct {
	// Unreachable lists hostnames the mock refuses to verify
	Unreachable map[string]bool
	Probed      []string
}

// NewMockDomainProber creates a new mock domain prober
func NewMockDomainProber() *MockDomainProber {
	return &MockDomainProber{Unreachable: make(map[string]bool)}
}

func (m *MockDomainProber) Probe(ctx context.Context, hostname string) error {
	m.Probed = append(m.Probed, hostname)
	if m.Unreachable[hostname] {
		return fmt.Errorf("domain %s is not reachable", hostname)
	}
	return nil
}
