package market

import (
	"context"
	"fmt"

	"marketsnap/internal/domain"

	"golang.org/x/sync/errgroup"
)

// RatesKey is the single key of the rate snapshot cache.
const RatesKey = "rates"

// RatesCache and AssetsCache are satisfied by the TTL caches wrapping the fetchers.
type RatesCache interface {
	Get(ctx context.Context, key string) (domain.ExchangeRates, error)
	Refresh(ctx context.Context, key string) (domain.ExchangeRates, error)
}

type AssetsCache interface {
	Get(ctx context.Context, key domain.AssetKey) (domain.AssetSnapshot, error)
	Refresh(ctx context.Context, key domain.AssetKey) (domain.AssetSnapshot, error)
}

type Service struct {
	rates  RatesCache
	assets AssetsCache
}

func NewService(rates RatesCache, assets AssetsCache) *Service {
	return &Service{rates: rates, assets: assets}
}

// Snapshot reads the rate snapshot and the asset snapshot concurrently and only returns
// when both are available.
func (s *Service) Snapshot(ctx context.Context, key domain.AssetKey) (domain.AggregatedSnapshot, error) {
	var out domain.AggregatedSnapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.rates.Get(gctx, RatesKey)
		if err != nil {
			return err
		}
		out.Rates = r
		return nil
	})
	g.Go(func() error {
		a, err := s.assets.Get(gctx, key)
		if err != nil {
			return err
		}
		out.Asset = a
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.AggregatedSnapshot{}, fmt.Errorf("%w: snapshot %s: %w", domain.ErrAggregateFailure, key, err)
	}
	return out, nil
}

// RefreshRates and RefreshAsset re-fetch regardless of entry age; the warm-up job uses
// them so warmed entries never go stale between ticks.
func (s *Service) RefreshRates(ctx context.Context) error {
	_, err := s.rates.Refresh(ctx, RatesKey)
	return err
}

func (s *Service) RefreshAsset(ctx context.Context, key domain.AssetKey) error {
	_, err := s.assets.Refresh(ctx, key)
	return err
}
