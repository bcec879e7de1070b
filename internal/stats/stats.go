// Package stats contains running statistics for a drill session.
package stats

import (
	"sort"

	"github.com/velsh/presshold/internal/model"
)

// Aggregator folds attempt outcomes into running totals. It is purely
// additive: no operation removes or corrects a prior record.
type Aggregator struct {
	totals     model.RunningStats
	perKey     map[rune]*model.KeyAggregate
	deviations []float64
}

// NewAggregator returns a zeroed aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{perKey: map[rune]*model.KeyAggregate{}}
}

// Record folds one outcome into the totals and returns the new stats.
// The average deviation is maintained incrementally so no sample history
// is needed for the totals.
func (a *Aggregator) Record(key rune, outcome model.AttemptOutcome) model.RunningStats {
	prevTotal := a.totals.TotalAttempts
	a.totals.TotalAttempts++
	if outcome.Success {
		a.totals.SuccessfulHits++
	}
	a.totals.AccuracyPercent = 100 * float64(a.totals.SuccessfulHits) / float64(a.totals.TotalAttempts)
	a.totals.AverageDeviationPercent = (a.totals.AverageDeviationPercent*float64(prevTotal) + outcome.DeviationPercent) / float64(a.totals.TotalAttempts)

	entry := a.keyEntry(key)
	entry.Attempts++
	if outcome.Success {
		entry.Hits++
	}
	entry.DeviationSum += outcome.DeviationPercent

	a.deviations = append(a.deviations, outcome.DeviationPercent)
	return a.totals
}

// Totals returns the current running stats.
func (a *Aggregator) Totals() model.RunningStats {
	return a.totals
}

// KeyAggregates returns per-key aggregates ordered by key.
func (a *Aggregator) KeyAggregates() []model.KeyAggregate {
	out := make([]model.KeyAggregate, 0, len(a.perKey))
	for _, agg := range a.perKey {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Deviations returns the recorded deviation history, one value per attempt.
func (a *Aggregator) Deviations() []float64 {
	out := make([]float64, len(a.deviations))
	copy(out, a.deviations)
	return out
}

// Reset zeroes all totals and history.
func (a *Aggregator) Reset() {
	a.totals = model.RunningStats{}
	a.perKey = map[rune]*model.KeyAggregate{}
	a.deviations = nil
}

func (a *Aggregator) keyEntry(key rune) *model.KeyAggregate {
	entry, ok := a.perKey[key]
	if !ok {
		entry = &model.KeyAggregate{Key: key}
		a.perKey[key] = entry
	}
	return entry
}
