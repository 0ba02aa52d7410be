package httpclient

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketsnap/internal/domain"
	"marketsnap/internal/metrics"
)

// YahooClient talks to the Yahoo Finance quote and chart endpoints.
type YahooClient struct {
	upstream
	baseURL string
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string   `json:"symbol"`
			RegularMarketPrice         *float64 `json:"regularMarketPrice"`
			RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteResponse"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func NewYahooClient(httpClient *http.Client, baseURL, userAgent string, m *metrics.Metrics) *YahooClient {
	c := &YahooClient{upstream: newUpstream("yahoo", httpClient, m), baseURL: baseURL}
	if userAgent != "" {
		c.userAgent = userAgent
	}
	return c
}

func (c *YahooClient) GetQuote(ctx context.Context, ticker string) (domain.Quote, error) {
	u, err := c.endpoint("/v7/finance/quote")
	if err != nil {
		return domain.Quote{}, err
	}
	u.RawQuery = url.Values{"symbols": {ticker}}.Encode()

	var body yahooQuoteResponse
	if err = c.getJSON(ctx, u.String(), &body); err != nil {
		return domain.Quote{}, err
	}
	if e := body.QuoteResponse.Error; e != nil {
		return domain.Quote{}, fmt.Errorf("%w: quote for %q: %s: %s", domain.ErrMalformedResponse, ticker, e.Code, e.Description)
	}
	if len(body.QuoteResponse.Result) == 0 {
		return domain.Quote{}, fmt.Errorf("%w: no quote returned for %q", domain.ErrMalformedResponse, ticker)
	}

	r := body.QuoteResponse.Result[0]
	var q domain.Quote
	if r.RegularMarketPrice != nil {
		q.Price = *r.RegularMarketPrice
	}
	if r.RegularMarketChangePercent != nil {
		q.ChangePct = *r.RegularMarketChangePercent
	}
	return q, nil
}

// GetDailyCloses returns the daily closes between from and to, oldest first. Days without a
// close are skipped; an empty result is not an error here.
func (c *YahooClient) GetDailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]domain.PricePoint, error) {
	u, err := c.endpoint("/v8/finance/chart/" + ticker)
	if err != nil {
		return nil, err
	}
	u.RawQuery = url.Values{
		"period1":  {strconv.FormatInt(from.Unix(), 10)},
		"period2":  {strconv.FormatInt(to.Unix(), 10)},
		"interval": {"1d"},
		"events":   {"history"},
	}.Encode()

	var body yahooChartResponse
	if err = c.getJSON(ctx, u.String(), &body); err != nil {
		return nil, err
	}
	if e := body.Chart.Error; e != nil {
		return nil, fmt.Errorf("%w: chart for %q: %s: %s", domain.ErrMalformedResponse, ticker, e.Code, e.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no chart returned for %q", domain.ErrMalformedResponse, ticker)
	}

	res := body.Chart.Result[0]
	var closes []*float64
	if len(res.Indicators.Quote) > 0 {
		closes = res.Indicators.Quote[0].Close
	}
	if len(closes) != len(res.Timestamp) {
		return nil, fmt.Errorf("%w: chart for %q has %d timestamps and %d closes",
			domain.ErrMalformedResponse, ticker, len(res.Timestamp), len(closes))
	}

	points := make([]domain.PricePoint, 0, len(closes))
	for i, ts := range res.Timestamp {
		cl := closes[i]
		if cl == nil || math.IsNaN(*cl) || math.IsInf(*cl, 0) {
			continue
		}
		// timestamps mark the session open; shift to exchange time before taking the date
		local := time.Unix(ts+res.Meta.GMTOffset, 0).UTC()
		points = append(points, domain.PricePoint{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Close: *cl,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (c *YahooClient) endpoint(path string) (*url.URL, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u, nil
}
