package market

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"marketsnap/internal/adapters"
	"marketsnap/internal/asset"
	"marketsnap/internal/cache"
	"marketsnap/internal/domain"
	"marketsnap/internal/rates"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Testify mocks ---

type MockRatesCache struct{ mock.Mock }

func (m *MockRatesCache) Get(ctx context.Context, key string) (domain.ExchangeRates, error) {
	args := m.Called(ctx, key)
	r, _ := args.Get(0).(domain.ExchangeRates)
	return r, args.Error(1)
}

func (m *MockRatesCache) Refresh(ctx context.Context, key string) (domain.ExchangeRates, error) {
	args := m.Called(ctx, key)
	r, _ := args.Get(0).(domain.ExchangeRates)
	return r, args.Error(1)
}

type MockAssetsCache struct{ mock.Mock }

func (m *MockAssetsCache) Get(ctx context.Context, key domain.AssetKey) (domain.AssetSnapshot, error) {
	args := m.Called(ctx, key)
	a, _ := args.Get(0).(domain.AssetSnapshot)
	return a, args.Error(1)
}

func (m *MockAssetsCache) Refresh(ctx context.Context, key domain.AssetKey) (domain.AssetSnapshot, error) {
	args := m.Called(ctx, key)
	a, _ := args.Get(0).(domain.AssetSnapshot)
	return a, args.Error(1)
}

type MockPrimaryClient struct{ mock.Mock }

func (m *MockPrimaryClient) FetchDocument(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	doc, _ := args.Get(0).(map[string]any)
	return doc, args.Error(1)
}

type MockSecondaryClient struct{ mock.Mock }

func (m *MockSecondaryClient) FetchList(ctx context.Context) ([]adapters.ListedQuote, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]adapters.ListedQuote)
	return list, args.Error(1)
}

type MockQuoteClient struct{ mock.Mock }

func (m *MockQuoteClient) GetQuote(ctx context.Context, ticker string) (domain.Quote, error) {
	args := m.Called(ctx, ticker)
	q, _ := args.Get(0).(domain.Quote)
	return q, args.Error(1)
}

func (m *MockQuoteClient) GetDailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]domain.PricePoint, error) {
	args := m.Called(ctx, ticker, from, to)
	points, _ := args.Get(0).([]domain.PricePoint)
	return points, args.Error(1)
}

var xyz = domain.AssetKey{Ticker: "XYZ", Months: 1}

// --- Snapshot ---

func TestService_Snapshot_CombinesBothHalves(t *testing.T) {
	ratesCache := new(MockRatesCache)
	assetsCache := new(MockAssetsCache)
	svc := NewService(ratesCache, assetsCache)

	wantRates := domain.ExchangeRates{Blue: domain.RateQuote{Buy: 900, Sell: 950}}
	wantAsset := domain.AssetSnapshot{Ticker: "XYZ", Price: 10}
	ratesCache.On("Get", mock.Anything, RatesKey).Return(wantRates, nil).Once()
	assetsCache.On("Get", mock.Anything, xyz).Return(wantAsset, nil).Once()

	got, err := svc.Snapshot(context.Background(), xyz)
	require.NoError(t, err)
	require.Equal(t, domain.AggregatedSnapshot{Rates: wantRates, Asset: wantAsset}, got)
	ratesCache.AssertExpectations(t)
	assetsCache.AssertExpectations(t)
}

func TestService_Snapshot_EitherFailureFailsWhole(t *testing.T) {
	cases := []struct {
		name     string
		ratesErr error
		assetErr error
	}{
		{name: "rates", ratesErr: errors.New("rates down")},
		{name: "asset", assetErr: errors.New("asset down")},
		{name: "both", ratesErr: errors.New("rates down"), assetErr: errors.New("asset down")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ratesCache := new(MockRatesCache)
			assetsCache := new(MockAssetsCache)
			svc := NewService(ratesCache, assetsCache)

			ratesCache.On("Get", mock.Anything, RatesKey).Return(domain.ExchangeRates{Blue: domain.RateQuote{Sell: 1}}, tc.ratesErr).Maybe()
			assetsCache.On("Get", mock.Anything, xyz).Return(domain.AssetSnapshot{Ticker: "XYZ"}, tc.assetErr).Maybe()

			got, err := svc.Snapshot(context.Background(), xyz)
			require.ErrorIs(t, err, domain.ErrAggregateFailure)
			require.Equal(t, domain.AggregatedSnapshot{}, got)
		})
	}
}

func TestService_Snapshot_RunsHalvesConcurrently(t *testing.T) {
	ratesCache := new(MockRatesCache)
	assetsCache := new(MockAssetsCache)
	svc := NewService(ratesCache, assetsCache)

	// each half waits for the other to have started
	var started sync.WaitGroup
	started.Add(2)
	wait := func(mock.Arguments) {
		started.Done()
		started.Wait()
	}
	ratesCache.On("Get", mock.Anything, RatesKey).Run(wait).Return(domain.ExchangeRates{}, nil).Once()
	assetsCache.On("Get", mock.Anything, xyz).Run(wait).Return(domain.AssetSnapshot{}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Snapshot(context.Background(), xyz)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot halves did not run concurrently")
	}
}

func TestService_Refresh_BypassesFreshness(t *testing.T) {
	ratesCache := new(MockRatesCache)
	assetsCache := new(MockAssetsCache)
	svc := NewService(ratesCache, assetsCache)

	upstreamErr := errors.New("upstream down")
	ratesCache.On("Refresh", mock.Anything, RatesKey).Return(domain.ExchangeRates{}, nil).Once()
	assetsCache.On("Refresh", mock.Anything, xyz).Return(domain.AssetSnapshot{}, upstreamErr).Once()

	require.NoError(t, svc.RefreshRates(context.Background()))
	require.ErrorIs(t, svc.RefreshAsset(context.Background(), xyz), upstreamErr)

	ratesCache.AssertExpectations(t)
	assetsCache.AssertExpectations(t)
	ratesCache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

// --- End to end over real caches and fetchers ---

func decodeDoc(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	require.NoError(t, dec.Decode(&doc))
	return doc
}

type e2e struct {
	svc        *Service
	ratesCache *cache.TTL[string, domain.ExchangeRates]
	primary    *MockPrimaryClient
	secondary  *MockSecondaryClient
	quotes     *MockQuoteClient
	advance    func(time.Duration)
}

func newE2E(t *testing.T) *e2e {
	t.Helper()
	var mu sync.Mutex
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}

	primary := new(MockPrimaryClient)
	secondary := new(MockSecondaryClient)
	quotes := new(MockQuoteClient)

	agg := rates.NewAggregator(primary, secondary, time.Second, time.Second)
	fetcher := asset.NewFetcher(quotes, time.Second)

	ratesCache := cache.New[string, domain.ExchangeRates]("rates", 5*time.Minute,
		func(ctx context.Context, _ string) (domain.ExchangeRates, error) { return agg.Fetch(ctx) },
		cache.WithClock[string, domain.ExchangeRates](clock))
	assetCache := cache.New[domain.AssetKey, domain.AssetSnapshot]("assets", 5*time.Minute,
		fetcher.Fetch,
		cache.WithClock[domain.AssetKey, domain.AssetSnapshot](clock))

	return &e2e{
		svc:        NewService(ratesCache, assetCache),
		ratesCache: ratesCache,
		primary:    primary,
		secondary:  secondary,
		quotes:     quotes,
		advance:    advance,
	}
}

var series = []domain.PricePoint{
	{Date: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), Close: 100},
	{Date: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), Close: 110},
	{Date: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), Close: 121},
}

func TestEndToEnd_SecondRequestWithinWindowHitsCache(t *testing.T) {
	e := newE2E(t)

	e.primary.On("FetchDocument", mock.Anything).Return(decodeDoc(t, `{
        "blue": {"bid": 1210},
        "mep": {"al30": {"24hs": {"price": 1195}}}
    }`), nil).Once()
	e.secondary.On("FetchList", mock.Anything).Return([]adapters.ListedQuote{
		{Name: "blue", Buy: json.Number("900"), Sell: json.Number("950")},
	}, nil).Once()
	e.quotes.On("GetQuote", mock.Anything, "XYZ").Return(domain.Quote{Price: 121, ChangePct: 0.3}, nil).Once()
	e.quotes.On("GetDailyCloses", mock.Anything, "XYZ", mock.Anything, mock.Anything).Return(series, nil).Once()

	first, err := e.svc.Snapshot(context.Background(), xyz)
	require.NoError(t, err)
	require.Equal(t, 950.0, first.Rates.Blue.Sell)
	require.InDelta(t, 21.0, first.Asset.RangeVariationPct, 1e-9)

	e.advance(4 * time.Minute)

	second, err := e.svc.Snapshot(context.Background(), xyz)
	require.NoError(t, err)
	require.Equal(t, first, second)

	e.primary.AssertNumberOfCalls(t, "FetchDocument", 1)
	e.secondary.AssertNumberOfCalls(t, "FetchList", 1)
	e.quotes.AssertNumberOfCalls(t, "GetQuote", 1)
	e.quotes.AssertNumberOfCalls(t, "GetDailyCloses", 1)
}

func TestEndToEnd_StaleServedWhenRefreshFails(t *testing.T) {
	e := newE2E(t)

	e.primary.On("FetchDocument", mock.Anything).Return(decodeDoc(t, `{
        "blue": {"ask": 1230, "bid": 1210},
        "mep": {"price": 1195}
    }`), nil).Once()
	e.quotes.On("GetQuote", mock.Anything, "XYZ").Return(domain.Quote{Price: 121}, nil).Once()
	e.quotes.On("GetDailyCloses", mock.Anything, "XYZ", mock.Anything, mock.Anything).Return(series, nil).Once()

	first, err := e.svc.Snapshot(context.Background(), xyz)
	require.NoError(t, err)

	e.advance(6 * time.Minute)
	e.primary.On("FetchDocument", mock.Anything).Return(nil, domain.ErrUpstreamUnavailable).Once()
	e.quotes.On("GetQuote", mock.Anything, "XYZ").Return(domain.Quote{}, domain.ErrUpstreamUnavailable).Once()
	e.quotes.On("GetDailyCloses", mock.Anything, "XYZ", mock.Anything, mock.Anything).Return(series, nil).Maybe()

	second, err := e.svc.Snapshot(context.Background(), xyz)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEndToEnd_AssetFailureDoesNotDiscardCachedRates(t *testing.T) {
	e := newE2E(t)

	e.primary.On("FetchDocument", mock.Anything).Return(decodeDoc(t, `{
        "blue": {"ask": 1230, "bid": 1210},
        "mep": {"price": 1195}
    }`), nil).Once()
	e.quotes.On("GetQuote", mock.Anything, "XYZ").Return(domain.Quote{}, domain.ErrUpstreamUnavailable).Once()
	e.quotes.On("GetDailyCloses", mock.Anything, "XYZ", mock.Anything, mock.Anything).Return(series, nil).Maybe()

	_, err := e.svc.Snapshot(context.Background(), xyz)
	require.ErrorIs(t, err, domain.ErrAggregateFailure)

	// the rates refresh completed independently and is served from cache now
	require.Eventually(t, func() bool {
		entry, ok := e.ratesCache.Peek(RatesKey)
		return ok && entry.Value.Blue.Sell == 1230
	}, time.Second, 10*time.Millisecond)
	e.primary.AssertNumberOfCalls(t, "FetchDocument", 1)
}
