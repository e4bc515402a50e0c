package engine

import (
	"strings"
	"time"
)

const (
	// Decimal odds outside this window are treated as malformed and dropped.
	minValidPrice = 1.0
	maxValidPrice = 100.0

	// Two line values within this distance are considered the same point.
	lineTolerance = 1e-3
)

// Config provides optional overrides for the engine. The zero value gets the
// production defaults; tests override the clock and thresholds explicitly.
type Config struct {
	// LineDependentMarkets lists the market keys whose quotes carry a
	// spread/total point. Keys containing "spreads" or "totals" are also
	// classified as line-dependent so period-qualified variants work
	// without listing every one.
	LineDependentMarkets []string

	// MinProfitPercent is the noise floor below which a mathematically
	// positive edge is not reported. Default 0.1.
	MinProfitPercent float64

	// OddsRatioCeiling rejects a group whose best-price ratio exceeds it;
	// an extreme disparity more likely means stale or mismatched quotes
	// than a real edge. Default 50.
	OddsRatioCeiling float64

	// StalenessWindow rejects matches that started longer than this ago.
	// Default 24h.
	StalenessWindow time.Duration

	// BookmakerAliases maps alternate listings to a canonical name
	// (lowercased on both sides) so the same exchange listed twice cannot
	// arb against itself.
	BookmakerAliases map[string]string

	// Now supplies the clock for staleness checks. Defaults to time.Now.
	Now func() time.Time

	// Debug enables per-group rejection logging.
	Debug bool
}

// DefaultLineDependentMarkets covers the spread/total families of The Odds
// API style market keys, including alternates and period variants.
var DefaultLineDependentMarkets = []string{
	"spreads",
	"alternate_spreads",
	"spreads_h1",
	"spreads_h2",
	"spreads_q1",
	"spreads_q2",
	"spreads_q3",
	"spreads_q4",
	"totals",
	"alternate_totals",
	"totals_h1",
	"totals_h2",
	"totals_q1",
	"totals_q2",
	"totals_q3",
	"totals_q4",
	"team_totals",
	"alternate_team_totals",
}

// DefaultBookmakerAliases folds known duplicate listings of the same book
// into one identity for the self-arbitrage check.
var DefaultBookmakerAliases = map[string]string{
	"betfair_ex_uk":     "betfair",
	"betfair_ex_eu":     "betfair",
	"betfair_ex_au":     "betfair",
	"betfair_sb_uk":     "betfair",
	"williamhill_us":    "williamhill",
	"william hill":      "williamhill",
	"william hill (us)": "williamhill",
	"unibet_uk":         "unibet",
	"unibet_eu":         "unibet",
	"unibet_us":         "unibet",
	"pinnacle_uk":       "pinnacle",
}

type config struct {
	lineDependent    map[string]bool
	minProfitPercent float64
	oddsRatioCeiling float64
	stalenessWindow  time.Duration
	aliases          map[string]string
	now              func() time.Time
	debug            bool
}

func (c Config) resolve() config {
	keys := c.LineDependentMarkets
	if keys == nil {
		keys = DefaultLineDependentMarkets
	}
	lineDependent := make(map[string]bool, len(keys))
	for _, k := range keys {
		lineDependent[strings.ToLower(strings.TrimSpace(k))] = true
	}

	minProfit := c.MinProfitPercent
	if minProfit <= 0 {
		minProfit = 0.1
	}
	ceiling := c.OddsRatioCeiling
	if ceiling <= 0 {
		ceiling = 50
	}
	window := c.StalenessWindow
	if window <= 0 {
		window = 24 * time.Hour
	}

	src := c.BookmakerAliases
	if src == nil {
		src = DefaultBookmakerAliases
	}
	aliases := make(map[string]string, len(src))
	for alias, canonical := range src {
		aliases[strings.ToLower(strings.TrimSpace(alias))] = strings.ToLower(strings.TrimSpace(canonical))
	}

	now := c.Now
	if now == nil {
		now = time.Now
	}

	return config{
		lineDependent:    lineDependent,
		minProfitPercent: minProfit,
		oddsRatioCeiling: ceiling,
		stalenessWindow:  window,
		aliases:          aliases,
		now:              now,
		debug:            c.Debug,
	}
}

// isLineDependent reports whether quotes for the market key carry a point.
// Table lookup first, substring fallback for period variants not listed.
func (c *config) isLineDependent(marketKey string) bool {
	key := strings.ToLower(marketKey)
	if c.lineDependent[key] {
		return true
	}
	return strings.Contains(key, "spreads") || strings.Contains(key, "totals")
}

// canonicalBookmaker lowercases and resolves aliases so the distinct-book
// check treats duplicate listings as one identity.
func (c *config) canonicalBookmaker(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := c.aliases[key]; ok {
		return canonical
	}
	return key
}
