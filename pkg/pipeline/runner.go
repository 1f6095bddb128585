package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/itemshuffle/pkg/cache"
	"github.com/matzehuels/itemshuffle/pkg/errors"
	"github.com/matzehuels/itemshuffle/pkg/fill"
	"github.com/matzehuels/itemshuffle/pkg/logic/integrate"
	"github.com/matzehuels/itemshuffle/pkg/observability"
	"github.com/matzehuels/itemshuffle/pkg/random"
	"github.com/matzehuels/itemshuffle/pkg/reach"
	"github.com/matzehuels/itemshuffle/pkg/world"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Prepare loads the world in opts and integrates it.
func (r *Runner) Prepare(ctx context.Context, opts Options) (*Prepared, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	w, err := world.Parse(opts.World)
	if err != nil {
		return nil, err
	}
	g, err := w.Build(opts.flags())
	if err != nil {
		return nil, err
	}

	observability.Pipeline().OnIntegrateStart(ctx, w.Name, g.Len())
	start := time.Now()
	res, err := integrate.Integrate(g, opts.flags(), integrate.Options{RetainDisabled: opts.RetainDisabled})
	elapsed := time.Since(start)
	if err != nil {
		observability.Pipeline().OnIntegrateComplete(ctx, w.Name, 0, 0, elapsed, err)
		return nil, integrationError(err)
	}
	observability.Pipeline().OnIntegrateComplete(ctx, w.Name, res.Index.NumSlots(), len(res.Unreachable), elapsed, nil)

	r.Logger.Debug("integrated world",
		"world", w.Name,
		"nodes", g.Len(),
		"slots", res.Index.NumSlots(),
		"unreachable", len(res.Unreachable),
		"duration", elapsed)

	return &Prepared{
		Name:      w.Name,
		WorldHash: cache.Hash(opts.World),
		Graph:     g,
		Logic:     res,
	}, nil
}

func integrationError(err error) error {
	var se *integrate.StructuralError
	switch {
	case stderrors.As(err, &se):
		return errors.Wrap(errors.ErrCodeStructural, err, "world cannot be solved")
	case stderrors.Is(err, reach.ErrCapacity):
		return errors.Wrap(errors.ErrCodeCapacity, err, "world is too large")
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "integrate")
}

// Generate runs load, integrate, fill and verify. A cached placement for the
// same world, flags and seed is reused unless opts.Refresh is set; it is
// verified like a fresh one.
func (r *Runner) Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	p, err := r.Prepare(ctx, opts)
	if err != nil {
		observability.Pipeline().OnGenerateComplete(ctx, "", 0, time.Since(start), err)
		return nil, err
	}

	res := &Result{
		Prepared: p,
		RunID:    uuid.NewString(),
		Seed:     opts.Seed,
		Stats: Stats{
			Nodes:         p.Graph.Len(),
			Slots:         p.Logic.Index.NumSlots(),
			Items:         p.Logic.Index.NumItems(),
			Unreachable:   len(p.Logic.Unreachable),
			IntegrateTime: time.Since(start),
		},
	}
	key := r.Keyer.FillKey(p.WorldHash, opts.FillKeyOpts())
	res.key = key

	if !opts.Refresh {
		if rec, ok := r.lookup(ctx, key, p); ok {
			res.Attempt, res.AttemptSeed, res.Filling = rec.Attempt, rec.AttemptSeed, rec.Filling
			res.CacheHit = true
		}
	}

	fillStart := time.Now()
	if !res.CacheHit {
		rec, err := r.fill(ctx, p, opts)
		if err != nil {
			observability.Pipeline().OnGenerateComplete(ctx, p.Name, opts.Attempts, time.Since(start), err)
			return nil, err
		}
		res.Attempt, res.AttemptSeed, res.Filling = rec.Attempt, rec.AttemptSeed, rec.Filling
		if data, err := json.Marshal(rec); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err == nil {
				observability.Cache().OnCacheSet(ctx, "fill", len(data))
			} else {
				r.Logger.Warn("cache write failed", "error", err)
			}
		}
	}
	res.Stats.FillTime = time.Since(fillStart)
	res.Placements = p.Logic.Index.Placements(res.Filling)

	observability.Pipeline().OnGenerateComplete(ctx, p.Name, res.Attempt+1, time.Since(start), nil)
	r.Logger.Info("generated placement",
		"world", p.Name,
		"run", res.RunID,
		"seed", res.Seed,
		"attempt", res.Attempt,
		"cached", res.CacheHit,
		"duration", time.Since(start))
	return res, nil
}

// lookup returns a cached placement when it is still complete for p.
func (r *Runner) lookup(ctx context.Context, key string, p *Prepared) (record, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "fill")
		return record{}, false
	}
	var rec record
	x := p.Logic.Index
	if err := json.Unmarshal(data, &rec); err != nil || !x.Complete(rec.Filling) {
		r.Logger.Warn("discarding stale cache entry", "key", key)
		observability.Cache().OnCacheMiss(ctx, "fill")
		return record{}, false
	}
	observability.Cache().OnCacheHit(ctx, "fill")
	return rec, true
}

// fill runs up to opts.Attempts placement attempts on opts.Workers
// goroutines and returns the lowest-numbered success.
func (r *Runner) fill(ctx context.Context, p *Prepared, opts Options) (record, error) {
	win, terminal := p.Graph.Win()
	filler := &fill.Filler{
		Index:    p.Logic.Index,
		Fit:      fill.ClassFit(p.Graph),
		Priority: fill.PriorityFrom(p.Graph),
		Win:      win,
		Terminal: terminal,
	}

	var best atomic.Int64
	best.Store(int64(opts.Attempts))
	fillings := make([]reach.Filling, opts.Attempts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for attempt := range opts.Attempts {
		if int64(attempt) > best.Load() {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if int64(attempt) > best.Load() {
				return nil
			}
			seed := random.Derive(opts.Seed, attempt)
			start := time.Now()
			f, ok := filler.Fill(random.New(seed))
			observability.Pipeline().OnFillAttempt(gctx, attempt, seed, ok, time.Since(start))
			if !ok {
				return nil
			}
			fillings[attempt] = f
			for {
				cur := best.Load()
				if int64(attempt) >= cur || best.CompareAndSwap(cur, int64(attempt)) {
					return nil
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return record{}, errors.Wrap(errors.ErrCodeInternal, err, "fill interrupted")
	}

	n := int(best.Load())
	if n >= opts.Attempts {
		r.Logger.Debug("all attempts failed", "attempts", opts.Attempts)
		return record{}, errors.New(errors.ErrCodeNoValidFill, "no valid configuration could be generated")
	}
	f := fillings[n]
	if !p.Logic.Index.Complete(f) {
		return record{}, errors.New(errors.ErrCodeInternal, "attempt %d produced an incomplete placement", n)
	}
	r.Logger.Debug("placement found", "attempt", n, "attempts", opts.Attempts)
	return record{Attempt: n, AttemptSeed: random.Derive(opts.Seed, n), Filling: f}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
