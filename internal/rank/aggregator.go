// Package rank is the caller-side layer on top of the engine: it merges
// opportunities found across many matches and polls, drops duplicates, and
// produces the final profit-ranked list.
package rank

import (
	"fmt"
	"sort"
	"time"

	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/hashutil"
)

// Key identifies one fixture+market+line combination independently of which
// poll produced it, so repeated evaluations collapse to one entry.
func Key(op *engine.Opportunity) string {
	line := ""
	if op.Line != nil {
		line = fmt.Sprintf("%.3f", *op.Line)
	}
	return hashutil.HashStrings(
		op.SportKey,
		op.HomeTeam,
		op.AwayTeam,
		op.CommenceTime.UTC().Format(time.RFC3339),
		op.MarketKey,
		line,
	)
}

// Aggregator merges opportunities across matches and re-evaluations. On a
// key collision the higher profit wins; equal profit keeps the first seen.
type Aggregator struct {
	byKey map[string]engine.Opportunity
}

func NewAggregator() *Aggregator {
	return &Aggregator{byKey: make(map[string]engine.Opportunity)}
}

func (a *Aggregator) Add(ops ...engine.Opportunity) {
	for _, op := range ops {
		key := Key(&op)
		if existing, ok := a.byKey[key]; ok && existing.ProfitPercentage >= op.ProfitPercentage {
			continue
		}
		a.byKey[key] = op
	}
}

func (a *Aggregator) Len() int {
	return len(a.byKey)
}

// Ranked returns the merged opportunities sorted by profit descending, with
// the dedup key as a deterministic tie-break.
func (a *Aggregator) Ranked() []engine.Opportunity {
	out := make([]engine.Opportunity, 0, len(a.byKey))
	for _, op := range a.byKey {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProfitPercentage != out[j].ProfitPercentage {
			return out[i].ProfitPercentage > out[j].ProfitPercentage
		}
		return Key(&out[i]) < Key(&out[j])
	})
	return out
}
