// Package engine groups heterogeneous per-bookmaker quotes into comparable
// markets, rejects groups that cannot represent a coherent market, and
// detects risk-free betting combinations across the best available prices.
//
// The engine is a pure function of (Match, market key): it holds no mutable
// state between calls and is safe to invoke concurrently across any number
// of matches.
package engine

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mkarlsson/surebet/internal/logging"
)

// Engine evaluates matches against a resolved configuration.
type Engine struct {
	cfg config
}

// New builds an engine. A zero Config gets production defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.resolve()}
}

// EvaluateMatch returns the single best Opportunity for one market key on
// one match, or nil when no group survives validation with a profitable
// combination. All data-quality problems reduce to a nil return; they are
// never reported as errors.
func (e *Engine) EvaluateMatch(match *Match, marketKey string) *Opportunity {
	if match == nil || marketKey == "" {
		return nil
	}

	var best *Opportunity
	for _, g := range buildGroups(&e.cfg, match, marketKey) {
		op, reason := e.evaluateGroup(match, g)
		if op == nil {
			if reason != "" && e.cfg.debug {
				logging.Debugf("[engine] %s vs %s %s: %s", match.HomeTeam, match.AwayTeam, marketKey, reason)
			}
			continue
		}
		// Groups arrive in deterministic order, so keeping the first
		// on equal profit is stable under input shuffling.
		if best == nil || op.ProfitPercentage > best.ProfitPercentage {
			best = op
		}
	}
	return best
}

// EvaluateAllMarkets runs EvaluateMatch over every market key present in the
// match's quotes and returns the surviving opportunities. Cross-match
// deduplication and profit sorting belong to the caller.
func (e *Engine) EvaluateAllMarkets(match *Match) []Opportunity {
	if match == nil {
		return nil
	}

	seen := make(map[string]bool)
	var keys []string
	for i := range match.Quotes {
		key := strings.ToLower(match.Quotes[i].MarketKey)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []Opportunity
	for _, key := range keys {
		if op := e.EvaluateMatch(match, key); op != nil {
			out = append(out, *op)
		}
	}
	return out
}

func (e *Engine) evaluateGroup(match *Match, g *marketGroup) (*Opportunity, string) {
	if reason := checkOutcomeCount(g); reason != "" {
		return nil, reason
	}

	best := selectBestPrices(g)

	if isSpreadKey(g.marketKey) {
		if reason := checkSpread(g, match, best); reason != "" {
			return nil, reason
		}
	}
	if isTotalsKey(g.marketKey) {
		if reason := checkTotals(g, best); reason != "" {
			return nil, reason
		}
	}
	if reason := checkStaleness(&e.cfg, match); reason != "" {
		return nil, reason
	}
	if match.CommenceTime.IsZero() && e.cfg.debug {
		logging.Debugf("[engine] %s vs %s: commence time unknown, skipping timing checks", match.HomeTeam, match.AwayTeam)
	}
	if reason := checkDistinctBookmakers(&e.cfg, best); reason != "" {
		return nil, reason
	}

	names := g.sortedOutcomes()
	totalInverse := 0.0
	maxPrice := 0.0
	minPrice := math.MaxFloat64
	for _, name := range names {
		price := best[name].Price
		totalInverse += 1 / price
		if price > maxPrice {
			maxPrice = price
		}
		if price < minPrice {
			minPrice = price
		}
	}

	if totalInverse >= 1 {
		return nil, ""
	}
	profit := (1/totalInverse - 1) * 100
	if profit < e.cfg.minProfitPercent {
		return nil, ""
	}
	oddsRatio := maxPrice / minPrice
	if oddsRatio > e.cfg.oddsRatioCeiling {
		return nil, "odds ratio exceeds ceiling, prices likely stale or mismatched"
	}

	op := &Opportunity{
		HomeTeam:          match.HomeTeam,
		AwayTeam:          match.AwayTeam,
		CommenceTime:      match.CommenceTime.UTC(),
		SportKey:          match.SportKey,
		SportTitle:        match.SportTitle,
		MarketKey:         g.marketKey,
		MarketDisplayName: MarketDisplayName(g.marketKey),
		Line:              g.line,
		ProfitPercentage:  round2(profit),
		TotalInverseOdds:  totalInverse,
		BestOdds:          best,
		OutcomeCount:      len(best),
		OddsRatio:         oddsRatio,
	}
	op.ValidationWarnings = e.buildWarnings(match, g, best, names, profit, oddsRatio)
	return op, ""
}

// selectBestPrices picks the maximum price per outcome. On equal prices the
// first quote in input order wins, which keeps repeated evaluations of
// identical input bit-identical.
func selectBestPrices(g *marketGroup) map[string]BestQuote {
	best := make(map[string]BestQuote, len(g.outcomes))
	for name, quotes := range g.outcomes {
		pick := quotes[0]
		for i := 1; i < len(quotes); i++ {
			if quotes[i].Price > pick.Price {
				pick = quotes[i]
			}
		}
		best[name] = BestQuote{Bookmaker: pick.Bookmaker, Price: pick.Price, Line: pick.Line}
	}
	return best
}

// buildWarnings collects the non-fatal data-quality signals. The sequence is
// fixed (profit tier, odds ratio, bookmaker reuse, outcome names, timing) so
// the list order is stable for identical input. Profit is deliberately never
// capped: large mispricings are surfaced with a warning, not suppressed.
func (e *Engine) buildWarnings(match *Match, g *marketGroup, best map[string]BestQuote, names []string, profit, oddsRatio float64) []string {
	var warnings []string

	switch {
	case profit > 50:
		warnings = append(warnings, "profit above 50% almost always means mismatched or stale quotes; verify before staking")
	case profit > 25:
		warnings = append(warnings, "profit above 25% is rare in liquid markets; double-check both prices are current")
	case profit > 15:
		warnings = append(warnings, "profit above 15% is unusually high; confirm the quotes are live")
	}

	if oddsRatio > 10 {
		warnings = append(warnings, "best-price ratio above 10; one side may be stale")
	}

	// Should already be impossible after the distinct-bookmaker check, but
	// one book pricing several outcomes of a 3+ way market is still worth
	// flagging.
	bookUse := make(map[string][]string)
	for _, name := range names {
		canonical := e.cfg.canonicalBookmaker(best[name].Bookmaker)
		bookUse[canonical] = append(bookUse[canonical], name)
	}
	for _, canonical := range sortedKeys(bookUse) {
		if len(bookUse[canonical]) > 1 {
			warnings = append(warnings, "bookmaker "+canonical+" holds the best price on multiple outcomes")
		}
	}

	if !isTotalsKey(g.marketKey) {
		home := strings.ToLower(strings.TrimSpace(match.HomeTeam))
		away := strings.ToLower(strings.TrimSpace(match.AwayTeam))
		for _, name := range names {
			lower := strings.ToLower(name)
			matchesHome := home != "" && strings.Contains(lower, home)
			matchesAway := away != "" && strings.Contains(lower, away)
			switch {
			case matchesHome && matchesAway:
				warnings = append(warnings, "outcome \""+name+"\" matches both team names; possible cross-sport name collision")
			case !matchesHome && !matchesAway && !strings.Contains(lower, "draw"):
				warnings = append(warnings, "outcome \""+name+"\" matches neither team name")
			}
		}
	}

	if !match.CommenceTime.IsZero() {
		now := e.cfg.now()
		start := match.CommenceTime.UTC()
		if start.Before(now) {
			warnings = append(warnings, "match already started; in-play prices move quickly")
		} else if start.Sub(now) > 365*24*time.Hour {
			warnings = append(warnings, "commence time is more than a year out; quotes this early are thin")
		}
	}

	return warnings
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
