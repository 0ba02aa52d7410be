package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketsnap/internal/domain"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultWarmInterval = 4 * time.Minute

type warmTarget interface {
	RefreshRates(ctx context.Context) error
	RefreshAsset(ctx context.Context, key domain.AssetKey) error
}

type warmObserver interface {
	ObserveWarmup(outcome string)
}

// Warmer re-fetches the rate snapshot and a fixed set of asset keys on every tick. With an
// interval shorter than the cache freshness window, requests for them never wait on
// upstream providers.
type Warmer struct {
	target   warmTarget
	keys     []domain.AssetKey
	interval time.Duration
	observer warmObserver
	// -----
	mu    sync.Mutex
	sched gocron.Scheduler
}

func NewWarmer(target warmTarget, keys []domain.AssetKey, interval time.Duration, observer warmObserver) *Warmer {
	if interval <= 0 {
		interval = defaultWarmInterval
	}
	return &Warmer{target: target, keys: keys, interval: interval, observer: observer}
}

func (w *Warmer) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	job := func(jobCtx context.Context) {
		execID := uuid.NewString()
		if warmErr := w.WarmOnce(jobCtx); warmErr != nil {
			logrus.Warnf("Cache warm-up %s finished with errors: %v", execID, warmErr)
			return
		}
		logrus.Debugf("Cache warm-up %s done", execID)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return err
	}

	w.mu.Lock()
	w.sched = scheduler
	w.mu.Unlock()
	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := w.Shutdown(); sdErr != nil {
			logrus.Errorf("Warmer shutdown error: %v", sdErr)
		}
	}()
	return nil
}

// WarmOnce refreshes every warmed key once. A failed refresh keeps the cached value.
func (w *Warmer) WarmOnce(ctx context.Context) error {
	var errs []error
	if err := w.target.RefreshRates(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, k := range w.keys {
		if err := w.target.RefreshAsset(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if w.observer != nil {
		if err != nil {
			w.observer.ObserveWarmup("error")
		} else {
			w.observer.ObserveWarmup("ok")
		}
	}
	return err
}

func (w *Warmer) Shutdown() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sched == nil {
		return nil
	}
	err := w.sched.Shutdown()
	w.sched = nil
	return err
}
