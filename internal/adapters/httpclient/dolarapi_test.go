package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketsnap/internal/adapters"
	"marketsnap/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestDolarAPIClient_Success(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
            {"moneda": "USD", "casa": "oficial", "nombre": "Oficial", "compra": 1040, "venta": 1080},
            {"moneda": "USD", "casa": "Blue", "nombre": "Blue", "compra": 900, "venta": 950},
            {"moneda": "USD", "casa": "bolsa", "nombre": "Bolsa", "compra": null, "venta": "1.190,5"}
        ]`))
	}))
	t.Cleanup(srv.Close)

	c := NewDolarAPIClient(srv.Client(), srv.URL, nil)

	list, err := c.FetchList(context.Background())
	require.NoError(t, err)
	require.Equal(t, "/v1/dolares", gotPath)
	require.Equal(t, []adapters.ListedQuote{
		{Name: "oficial", Buy: json.Number("1040"), Sell: json.Number("1080")},
		{Name: "blue", Buy: json.Number("900"), Sell: json.Number("950")},
		{Name: "bolsa", Buy: nil, Sell: "1.190,5"},
	}, list)
}

func TestDolarAPIClient_ObjectInsteadOfList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"casa": "blue"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewDolarAPIClient(srv.Client(), srv.URL, nil).FetchList(context.Background())
	require.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestDolarAPIClient_StatusCodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	_, err := NewDolarAPIClient(srv.Client(), srv.URL, nil).FetchList(context.Background())
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	require.Contains(t, err.Error(), "unexpected status code 429")
}
