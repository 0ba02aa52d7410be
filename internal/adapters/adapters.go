package adapters

import (
	"context"
	"time"

	"marketsnap/internal/domain"
)

// ListedQuote is one entry of a flat rate list, with buy and sell left exactly as decoded.
type ListedQuote struct {
	Name string
	Buy  any
	Sell any
}

// PrimaryRatesClient returns the nested per-channel rate document.
type PrimaryRatesClient interface {
	FetchDocument(ctx context.Context) (map[string]any, error)
}

// SecondaryRatesClient returns the flat list of named buy/sell quotes.
type SecondaryRatesClient interface {
	FetchList(ctx context.Context) ([]ListedQuote, error)
}

type QuoteClient interface {
	GetQuote(ctx context.Context, ticker string) (domain.Quote, error)
	GetDailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]domain.PricePoint, error)
}
