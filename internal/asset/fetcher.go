package asset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"marketsnap/internal/adapters"
	"marketsnap/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 10 * time.Second

type Fetcher struct {
	quotes  adapters.QuoteClient
	timeout time.Duration
	now     func() time.Time
}

func NewFetcher(quotes adapters.QuoteClient, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{quotes: quotes, timeout: timeout, now: time.Now}
}

// Fetch loads the quote and the trailing daily closes for key concurrently.
// Either call failing, or an empty series, fails the whole snapshot.
func (f *Fetcher) Fetch(ctx context.Context, key domain.AssetKey) (domain.AssetSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	to := f.now().UTC()
	from := MonthsBefore(to, key.Months)

	var (
		quote  domain.Quote
		series []domain.PricePoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := f.quotes.GetQuote(gctx, key.Ticker)
		if err != nil {
			return fmt.Errorf("quote for %s: %w", key.Ticker, err)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		s, err := f.quotes.GetDailyCloses(gctx, key.Ticker, from, to)
		if err != nil {
			return fmt.Errorf("history for %s: %w", key, err)
		}
		series = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.AssetSnapshot{}, err
	}

	if len(series) == 0 {
		return domain.AssetSnapshot{}, fmt.Errorf("%w: %s", domain.ErrEmptySeries, key)
	}
	series = sortedCopy(series)

	last := series[len(series)-1].Close
	price := quote.Price
	if price == 0 {
		price = last
	}

	return domain.AssetSnapshot{
		Ticker:            key.Ticker,
		Price:             price,
		ChangePct:         quote.ChangePct,
		Series:            series,
		RangeVariationPct: RangeVariationPct(series),
	}, nil
}

// MonthsBefore steps back n calendar months, clamping to the last day of the target month
// so that March 31 minus one month is February 28 rather than March 3.
func MonthsBefore(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, -n, 0)
	lastDay := target.AddDate(0, 1, -1).Day()
	d := t.Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// RangeVariationPct is the percent change from the first to the last close.
// It is 0 for an empty series or when the first close is 0.
func RangeVariationPct(series []domain.PricePoint) float64 {
	if len(series) == 0 || series[0].Close == 0 {
		return 0
	}
	first := decimal.NewFromFloat(series[0].Close)
	last := decimal.NewFromFloat(series[len(series)-1].Close)
	return last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func sortedCopy(series []domain.PricePoint) []domain.PricePoint {
	out := make([]domain.PricePoint, len(series))
	copy(out, series)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
