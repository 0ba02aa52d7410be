package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"marketsnap/internal/adapters"
	"marketsnap/internal/metrics"
)

// DolarAPIClient reads the flat list of dollar quotes keyed by "casa".
type DolarAPIClient struct {
	upstream
	baseURL string
}

type dolarAPIItem struct {
	Casa   string `json:"casa"`
	Nombre string `json:"nombre"`
	Compra any    `json:"compra"`
	Venta  any    `json:"venta"`
}

func NewDolarAPIClient(httpClient *http.Client, baseURL string, m *metrics.Metrics) *DolarAPIClient {
	return &DolarAPIClient{upstream: newUpstream("dolarapi", httpClient, m), baseURL: baseURL}
}

func (c *DolarAPIClient) FetchList(ctx context.Context) ([]adapters.ListedQuote, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/v1/dolares"

	var items []dolarAPIItem
	if err = c.getJSON(ctx, u.String(), &items); err != nil {
		return nil, err
	}

	out := make([]adapters.ListedQuote, 0, len(items))
	for _, it := range items {
		out = append(out, adapters.ListedQuote{
			Name: strings.ToLower(strings.TrimSpace(it.Casa)),
			Buy:  it.Compra,
			Sell: it.Venta,
		})
	}
	return out, nil
}
