package showcase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/davka-nysa/davka/internal/models"
)

// DefaultPollInterval matches how often the site refreshes the showcase.
const DefaultPollInterval = 60 * time.Second

// Poller fetches the daily list on a fixed interval. Failures are reported to
// the callback and retried on the next tick; there is no other retry policy.
type Poller struct {
	listURL    string
	httpClient *http.Client
	interval   time.Duration
	user       string
	password   string
}

// PollerOption mutates Poller configuration.
type PollerOption func(*Poller)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) PollerOption {
	return func(p *Poller) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithInterval overrides DefaultPollInterval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithBasicAuth sends credentials for sites behind the basic-auth gate.
func WithBasicAuth(user, password string) PollerOption {
	return func(p *Poller) {
		p.user = user
		p.password = password
	}
}

// NewPoller creates a poller for listURL (e.g. http://host/api/daily/list).
func NewPoller(listURL string, opts ...PollerOption) *Poller {
	p := &Poller{
		listURL:  listURL,
		interval: DefaultPollInterval,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Fetch performs one request. Error statuses still carry a payload body, so
// the body is decoded regardless of the HTTP status code.
func (p *Poller) Fetch(ctx context.Context) (models.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.listURL, nil)
	if err != nil {
		return models.Payload{}, fmt.Errorf("failed to build list request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")
	if p.password != "" {
		req.SetBasicAuth(p.user, p.password)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Payload{}, fmt.Errorf("failed to fetch daily list: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.Payload{}, fmt.Errorf("failed to read daily list: %w", err)
	}

	var payload models.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Payload{}, fmt.Errorf("failed to decode daily list (HTTP %d): %w", resp.StatusCode, err)
	}
	if !payload.Status.Valid() {
		return models.Payload{}, fmt.Errorf("daily list returned unknown status %q (HTTP %d)", payload.Status, resp.StatusCode)
	}
	return payload, nil
}

// Run fetches immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context, fn func(models.Payload, error)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		payload, err := p.Fetch(ctx)
		if ctx.Err() != nil {
			return
		}
		fn(payload, err)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
