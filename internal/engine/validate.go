package engine

import (
	"fmt"
	"math"
	"strings"
)

// Validation is reject-and-continue: every check returns a diagnostic reason
// when the group cannot represent a coherent market, and the empty string
// when it passes. Reasons are for logging only and never surface as errors.

func checkOutcomeCount(g *marketGroup) string {
	if len(g.outcomes) < 2 {
		return fmt.Sprintf("only %d outcome(s) with valid quotes", len(g.outcomes))
	}
	return ""
}

// checkDistinctBookmakers refuses a combination that bets both sides at one
// book. Aliased listings of the same exchange count as one identity.
func checkDistinctBookmakers(cfg *config, best map[string]BestQuote) string {
	distinct := make(map[string]bool, len(best))
	for _, bq := range best {
		distinct[cfg.canonicalBookmaker(bq.Bookmaker)] = true
	}
	if len(distinct) < 2 {
		return "fewer than 2 distinct bookmakers across best prices"
	}
	return ""
}

// checkSpread validates a two-way handicap group: both team names must
// appear across the outcome names, the combined implied probability must be
// plausible, and when the signed points cannot confirm the outcomes are
// opposite sides, near-identical prices are treated as two quotes for the
// same side.
func checkSpread(g *marketGroup, match *Match, best map[string]BestQuote) string {
	names := g.sortedOutcomes()
	if len(names) != 2 {
		return ""
	}

	joined := strings.ToLower(names[0] + " | " + names[1])
	home := strings.ToLower(strings.TrimSpace(match.HomeTeam))
	away := strings.ToLower(strings.TrimSpace(match.AwayTeam))
	if home == "" || away == "" {
		return "spread market without known team names"
	}
	if !strings.Contains(joined, home) || !strings.Contains(joined, away) {
		return fmt.Sprintf("spread outcomes %q do not cover both %s and %s", joined, match.HomeTeam, match.AwayTeam)
	}

	a, b := best[names[0]], best[names[1]]
	if 1/a.Price+1/b.Price < 0.5 {
		return "combined implied probability under 50%, quotes look mismatched"
	}

	lineA, okA := bestOutcomeLine(g, names[0], a)
	lineB, okB := bestOutcomeLine(g, names[1], b)
	oppositeSides := okA && okB && math.Abs(lineA+lineB) <= lineTolerance
	if !oppositeSides {
		hi, lo := a.Price, b.Price
		if hi < lo {
			hi, lo = lo, hi
		}
		if hi/lo < 1.3 {
			return "prices suspiciously similar with unconfirmed sides, likely the same side twice"
		}
	}
	return ""
}

// checkTotals validates an over/under group: one Over and one Under outcome
// whose points agree within tolerance. When neither the quote nor the
// outcome name yields a point, there is no way to confirm the two sides
// reference the same total, so the group is rejected.
func checkTotals(g *marketGroup, best map[string]BestQuote) string {
	names := g.sortedOutcomes()
	if len(names) != 2 {
		return ""
	}

	var overName, underName string
	for _, name := range names {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "over"):
			overName = name
		case strings.Contains(lower, "under"):
			underName = name
		}
	}
	if overName == "" || underName == "" {
		return fmt.Sprintf("totals outcomes %q / %q are not an over/under pair", names[0], names[1])
	}

	overLine, okOver := bestOutcomeLine(g, overName, best[overName])
	underLine, okUnder := bestOutcomeLine(g, underName, best[underName])
	if !okOver || !okUnder {
		return "totals point not recoverable for both sides"
	}
	if math.Abs(overLine-underLine) > lineTolerance {
		return fmt.Sprintf("totals points disagree: over %.2f vs under %.2f", overLine, underLine)
	}
	return ""
}

// checkStaleness rejects matches that started longer than the staleness
// window ago. A zero commence time means timing is unknown and the check is
// skipped rather than failed.
func checkStaleness(cfg *config, match *Match) string {
	if match.CommenceTime.IsZero() {
		return ""
	}
	age := cfg.now().Sub(match.CommenceTime.UTC())
	if age > cfg.stalenessWindow {
		return fmt.Sprintf("match started %.1fh ago, past the %.0fh staleness window",
			age.Hours(), cfg.stalenessWindow.Hours())
	}
	return ""
}

// bestOutcomeLine resolves the point backing one outcome's best quote,
// falling back to a token in the outcome name.
func bestOutcomeLine(g *marketGroup, outcomeName string, best BestQuote) (float64, bool) {
	if best.Line != nil {
		return *best.Line, true
	}
	for i := range g.outcomes[outcomeName] {
		if g.outcomes[outcomeName][i].Line != nil {
			return *g.outcomes[outcomeName][i].Line, true
		}
	}
	return lineFromName(outcomeName)
}
