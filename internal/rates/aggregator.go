package rates

import (
	"context"
	"time"

	"marketsnap/internal/adapters"
	"marketsnap/internal/domain"
	"marketsnap/internal/numeric"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPrimaryTimeout   = 10 * time.Second
	DefaultSecondaryTimeout = 5 * time.Second
)

// enrichable are the channels refilled from the secondary provider when their sell is unknown.
// Buy-only gaps and the CCL channel are intentionally left as the primary reported them.
var enrichable = []domain.Channel{domain.ChannelBlue, domain.ChannelMEP}

type Aggregator struct {
	primary          adapters.PrimaryRatesClient
	secondary        adapters.SecondaryRatesClient
	rules            []ChannelRule
	primaryTimeout   time.Duration
	secondaryTimeout time.Duration
}

func NewAggregator(primary adapters.PrimaryRatesClient, secondary adapters.SecondaryRatesClient, primaryTimeout, secondaryTimeout time.Duration) *Aggregator {
	if primaryTimeout <= 0 {
		primaryTimeout = DefaultPrimaryTimeout
	}
	if secondaryTimeout <= 0 {
		secondaryTimeout = DefaultSecondaryTimeout
	}
	return &Aggregator{
		primary:          primary,
		secondary:        secondary,
		rules:            DefaultRules,
		primaryTimeout:   primaryTimeout,
		secondaryTimeout: secondaryTimeout,
	}
}

// Fetch builds a complete rate snapshot. Only a primary failure is returned as an error;
// the secondary provider is best-effort enrichment.
func (a *Aggregator) Fetch(ctx context.Context) (domain.ExchangeRates, error) {
	pctx, cancel := context.WithTimeout(ctx, a.primaryTimeout)
	defer cancel()

	doc, err := a.primary.FetchDocument(pctx)
	if err != nil {
		return domain.ExchangeRates{}, err
	}

	rates := Extract(doc, a.rules)
	if needsEnrichment(rates) {
		a.enrich(ctx, &rates)
	}
	return rates, nil
}

func needsEnrichment(r domain.ExchangeRates) bool {
	for _, ch := range enrichable {
		if !numeric.IsKnown(r.Quote(ch).Sell) {
			return true
		}
	}
	return false
}

func (a *Aggregator) enrich(ctx context.Context, rates *domain.ExchangeRates) {
	if a.secondary == nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, a.secondaryTimeout)
	defer cancel()

	list, err := a.secondary.FetchList(sctx)
	if err != nil {
		logrus.WithError(err).Warn("secondary rate provider failed, keeping primary values")
		return
	}

	byName := make(map[string]adapters.ListedQuote, len(list))
	for _, q := range list {
		if _, dup := byName[q.Name]; !dup {
			byName[q.Name] = q
		}
	}

	for _, ch := range enrichable {
		q := rates.Quote(ch)
		if numeric.IsKnown(q.Sell) {
			continue
		}
		found, ok := byName[string(ch)]
		if !ok {
			continue
		}
		*q = domain.RateQuote{Buy: numeric.Normalize(found.Buy), Sell: numeric.Normalize(found.Sell)}
		logrus.WithField("channel", ch).Info("channel filled from secondary rate provider")
	}
}
