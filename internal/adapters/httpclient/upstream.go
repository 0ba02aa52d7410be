package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"marketsnap/internal/domain"
	"marketsnap/internal/metrics"
)

const DefaultUserAgent = "marketsnap/1.0"

// upstream is the request/decode plumbing shared by every provider client.
type upstream struct {
	provider  string
	http      *http.Client
	userAgent string
	metrics   *metrics.Metrics
}

func newUpstream(provider string, httpClient *http.Client, m *metrics.Metrics) upstream {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return upstream{provider: provider, http: httpClient, userAgent: DefaultUserAgent, metrics: m}
}

// getJSON decodes the body of a GET to rawURL into out, keeping numbers as json.Number.
func (u upstream) getJSON(ctx context.Context, rawURL string, out any) (err error) {
	started := time.Now()
	defer func() {
		u.metrics.ObserveUpstream(u.provider, outcome(err), time.Since(started).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request for %s: %w", domain.ErrUpstreamUnavailable, u.provider, err)
	}
	req.Header.Set("Accept", "application/json")
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}

	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request for %s: %w", domain.ErrUpstreamUnavailable, u.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status code %d from %s: %s", domain.ErrUpstreamUnavailable, resp.StatusCode, u.provider, resp.Status)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err = dec.Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response from %s: %w", domain.ErrMalformedResponse, u.provider, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
