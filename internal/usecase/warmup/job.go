// Package warmup fills the cache with the product catalog before the service
// is considered ready.
package warmup

import (
	"context"
	"log/slog"
	"time"

	"commerce-server/internal/domain/product"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"

	"golang.org/x/sync/errgroup"
)

// Recorder receives warmup measurements.
type Recorder interface {
	ObserveWarmup(d time.Duration, products int, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveWarmup(time.Duration, int, error) {}

type Job struct {
	uow      shared.UnitOfWork
	cache    *shared.CacheAside
	state    *State
	cfg      config.WarmupConfig
	clock    clock.Clock
	recorder Recorder
	logger   *slog.Logger
}

func NewJob(
	uow shared.UnitOfWork,
	cache *shared.CacheAside,
	state *State,
	cfg config.WarmupConfig,
	clk clock.Clock,
	recorder Recorder,
	logger *slog.Logger,
) *Job {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Job{
		uow:      uow,
		cache:    cache,
		state:    state,
		cfg:      cfg,
		clock:    clk,
		recorder: recorder,
		logger:   logger,
	}
}

func (j *Job) State() *State { return j.state }

// Run writes every product under its detail key. The first failed write
// aborts the run and leaves the state not ready: a partially warmed cache
// must not look like a warmed one. Running again after success does nothing.
func (j *Job) Run(ctx context.Context) error {
	if j.state.Ready() {
		j.logger.Debug("cache warmup already completed")
		return nil
	}

	start := j.clock.Now()
	j.logger.Info("cache warmup started")

	var products []*product.Product
	err := j.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		products, err = tx.Products().FindAll(ctx)
		return err
	})
	if err != nil {
		err = errs.Wrap(err, "warmup: load product catalog")
		j.recorder.ObserveWarmup(j.clock.Now().Sub(start), 0, err)
		return err
	}

	if len(products) == 0 {
		j.state.markReady()
		j.recorder.ObserveWarmup(j.clock.Now().Sub(start), 0, nil)
		j.logger.Info("cache warmup completed, catalog is empty")
		return nil
	}

	if err := j.writeAll(ctx, products); err != nil {
		j.recorder.ObserveWarmup(j.clock.Now().Sub(start), len(products), err)
		j.logger.Error("cache warmup failed", slog.String("error", err.Error()))
		return err
	}

	j.state.markReady()
	elapsed := j.clock.Now().Sub(start)
	j.recorder.ObserveWarmup(elapsed, len(products), nil)

	attrs := []any{slog.Int("products", len(products)), slog.Duration("duration", elapsed)}
	if j.cfg.SlowThreshold > 0 && elapsed > j.cfg.SlowThreshold {
		j.logger.Warn("cache warmup was slow", attrs...)
	} else {
		j.logger.Info("cache warmup completed", attrs...)
	}
	return nil
}

func (j *Job) writeAll(ctx context.Context, products []*product.Product) error {
	g, gctx := errgroup.WithContext(ctx)
	if j.cfg.Concurrency > 0 {
		g.SetLimit(j.cfg.Concurrency)
	}
	ttl := keygen.ProductDetail.TTL()

	for _, p := range products {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := j.cache.Put(gctx, keygen.ProductKey(p.ID()), readmodel.FromProduct(p), ttl); err != nil {
				return errs.Wrapf(err, "warmup product %d", p.ID())
			}
			return nil
		})
	}
	return g.Wait()
}
