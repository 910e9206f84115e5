package learning

import (
	"context"
	"math"
	"time"
)

// Default aggregation parameters. A 90-day half-life means an event that old
// counts for half as much as a fresh one; the smoothing constant pulls
// lightly-observed documents toward a neutral prior.
const (
	DefaultHalfLifeDays = 90.0
	DefaultSmoothingM   = 10.0
)

// Options control one prior computation. Zero values mean the defaults; an
// empty Intent means no intent filtering.
type Options struct {
	Intent       string
	HalfLifeDays float64
	SmoothingM   float64
}

// PriorSource produces per-document priors for the search engine. The
// full-scan Calculator is the only implementation today; an incrementally
// maintained aggregate can slot in behind the same contract if the event
// log outgrows a per-call scan.
type PriorSource interface {
	Priors(ctx context.Context, opts Options) (map[string]float64, error)
}

// GlobalStats are weighted feedback totals for observability.
type GlobalStats struct {
	WeightedSuccesses float64 `json:"weighted_successes"`
	WeightedFailures  float64 `json:"weighted_failures"`
	WeightedTotal     float64 `json:"weighted_total"`
	SuccessRate       float64 `json:"success_rate"`
	Events            int     `json:"events_count"`
}

// Calculator derives priors by re-reading the whole event log on every call.
// Intentionally simple; acceptable while histories stay small.
type Calculator struct {
	store Store
	now   func() time.Time
}

// NewCalculator creates a calculator over the given store.
func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store, now: time.Now}
}

// expWeight is the exponential recency weight: 0.5^(age/halfLife).
func expWeight(ageDays, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		return 1.0
	}
	return math.Pow(0.5, ageDays/halfLifeDays)
}

func (c *Calculator) ageDays(ts time.Time) float64 {
	if ts.IsZero() {
		return 0
	}
	age := c.now().UTC().Sub(ts).Hours() / 24
	if age < 0 {
		return 0
	}
	return age
}

type tally struct {
	wins  float64
	fails float64
}

// aggregate folds the event log into weighted win/fail sums per doc path,
// optionally restricted to one intent.
func (c *Calculator) aggregate(ctx context.Context, intent string, halfLifeDays float64) (map[string]tally, int, error) {
	agg := make(map[string]tally)
	count := 0
	err := c.store.ForEach(ctx, func(ev Event) error {
		count++
		if intent != "" && ev.Intent != intent {
			return nil
		}
		w := expWeight(c.ageDays(ev.TS), halfLifeDays)
		t := agg[ev.DocPath]
		if ev.Success {
			t.wins += w
		} else {
			t.fails += w
		}
		agg[ev.DocPath] = t
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return agg, count, nil
}

// Priors computes the per-document bias:
//
//	prior = (wins - fails) / (wins + fails + m)
//
// with recency-weighted sums, clamped to [-1, +1]. The additive m keeps a
// single early outcome from producing an extreme, overconfident bias.
func (c *Calculator) Priors(ctx context.Context, opts Options) (map[string]float64, error) {
	halfLife := opts.HalfLifeDays
	if halfLife == 0 {
		halfLife = DefaultHalfLifeDays
	}
	m := opts.SmoothingM
	if m == 0 {
		m = DefaultSmoothingM
	}

	agg, _, err := c.aggregate(ctx, opts.Intent, halfLife)
	if err != nil {
		return nil, err
	}

	priors := make(map[string]float64, len(agg))
	for docPath, t := range agg {
		denom := t.wins + t.fails + math.Max(1e-6, m)
		prior := (t.wins - t.fails) / denom
		priors[docPath] = math.Max(-1, math.Min(1, prior))
	}
	return priors, nil
}

// Stats returns weighted totals and the global success rate.
func (c *Calculator) Stats(ctx context.Context, halfLifeDays float64) (GlobalStats, error) {
	if halfLifeDays == 0 {
		halfLifeDays = DefaultHalfLifeDays
	}

	agg, count, err := c.aggregate(ctx, "", halfLifeDays)
	if err != nil {
		return GlobalStats{}, err
	}

	var stats GlobalStats
	stats.Events = count
	for _, t := range agg {
		stats.WeightedSuccesses += t.wins
		stats.WeightedFailures += t.fails
	}
	stats.WeightedTotal = stats.WeightedSuccesses + stats.WeightedFailures
	if stats.WeightedTotal > 0 {
		stats.SuccessRate = stats.WeightedSuccesses / stats.WeightedTotal
	}
	return stats, nil
}
