/*
Package aggregate executes a plan of backend calls and merges the results into one
context. Calls run concurrently under a worker limit and each has its own timeout. A
failing call is recorded and never stops the others.
*/
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/shanehull/stockchat/internal/metrics"
	"github.com/shanehull/stockchat/internal/types"
)

const (
	DefaultWorkers     = 4
	DefaultCallTimeout = 15 * time.Second
)

var ErrMissingSymbol = errors.New("missing symbol parameter")

// Backend performs one call.
type Backend interface {
	Fetch(ctx context.Context, spec types.CallSpec) (types.Record, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, spec types.CallSpec) (types.Record, error)

func (f BackendFunc) Fetch(ctx context.Context, spec types.CallSpec) (types.Record, error) {
	return f(ctx, spec)
}

type Aggregator struct {
	backend     Backend
	workers     int
	callTimeout time.Duration
	log         zerolog.Logger
}

func New(backend Backend, workers int, callTimeout time.Duration, log zerolog.Logger) *Aggregator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Aggregator{backend: backend, workers: workers, callTimeout: callTimeout, log: log}
}

type outcome struct {
	rec types.Record
	err error
}

// Execute runs every spec and merges what succeeded. The result does not depend on the
// order calls finish in: outcomes are merged, and errors listed, in plan order.
func (a *Aggregator) Execute(ctx context.Context, specs []types.CallSpec) *types.AggregatedContext {
	outcomes := make([]outcome, len(specs))

	g := new(errgroup.Group)
	g.SetLimit(a.workers)

	for i, spec := range specs {
		g.Go(func() error {
			outcomes[i] = a.call(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()

	out := types.NewAggregatedContext()
	for i, spec := range specs {
		o := outcomes[i]
		if o.err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Error calling %s: %v", spec.Service().Name(), o.err))
			continue
		}
		merge(out, spec, o.rec)
	}

	if len(out.Errors) > 0 {
		a.log.Warn().Strs("errors", out.Errors).Int("calls", len(specs)).Msg("Some backend calls failed")
	}
	return out
}

func (a *Aggregator) call(ctx context.Context, spec types.CallSpec) (o outcome) {
	name := spec.Service().Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o = outcome{err: fmt.Errorf("panic: %v", r)}
		}
		status := "ok"
		if o.err != nil {
			status = "error"
		}
		metrics.BackendCalls.WithLabelValues(name, status).Inc()
		metrics.BackendLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if spec.Service().TickerScoped() {
		if _, ok := spec.Ticker(); !ok {
			return outcome{err: ErrMissingSymbol}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	rec, err := a.backend.Fetch(ctx, spec)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err == nil && rec == nil {
		err = errors.New("empty result")
	}
	return outcome{rec: rec, err: err}
}

func merge(out *types.AggregatedContext, spec types.CallSpec, rec types.Record) {
	svc := spec.Service()
	if tk, ok := spec.Ticker(); ok && svc.TickerScoped() {
		out.PutTicker(tk, svc.Category(), rec)
		return
	}
	bucket := svc.Bucket()
	if bucket == "" {
		bucket = types.BucketMisc
	}
	out.PutBucket(bucket, svc.Name(), rec)
}
