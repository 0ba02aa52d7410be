package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"marketsnap/internal/domain"
	"marketsnap/internal/metrics"
)

// CriptoYaClient reads the nested dollar document (one object per channel, bond channels
// broken down further by instrument and settlement).
type CriptoYaClient struct {
	upstream
	baseURL string
}

func NewCriptoYaClient(httpClient *http.Client, baseURL string, m *metrics.Metrics) *CriptoYaClient {
	return &CriptoYaClient{upstream: newUpstream("criptoya", httpClient, m), baseURL: baseURL}
}

func (c *CriptoYaClient) FetchDocument(ctx context.Context) (map[string]any, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/dolar"

	var doc map[string]any
	if err = c.getJSON(ctx, u.String(), &doc); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: empty rates document from %s", domain.ErrMalformedResponse, c.provider)
	}
	return doc, nil
}
