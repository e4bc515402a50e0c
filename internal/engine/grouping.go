package engine

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// marketGroup collects all quotes for one market key at one point value.
// For spread markets the grouping line is the point magnitude, since the two
// sides of the same handicap are quoted with opposite signs (-1.5 / +1.5)
// but belong to one market.
type marketGroup struct {
	marketKey string
	line      *float64
	outcomes  map[string][]Quote
}

// sortedOutcomes returns the outcome names in lexical order. All arithmetic
// and warning generation iterates this order so results do not depend on the
// order quotes arrived in.
func (g *marketGroup) sortedOutcomes() []string {
	names := make([]string, 0, len(g.outcomes))
	for name := range g.outcomes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *marketGroup) sameLine(line *float64) bool {
	if g.line == nil || line == nil {
		return g.line == nil && line == nil
	}
	return math.Abs(*g.line-*line) <= lineTolerance
}

// buildGroups partitions the match's quotes for one market key into groups
// keyed by point value. Quotes with prices outside (1.0, 100.0] are dropped
// silently as malformed. Line-dependent quotes without a point all land in a
// single nil-line fallback group rather than being discarded.
func buildGroups(cfg *config, match *Match, marketKey string) []*marketGroup {
	lineDependent := cfg.isLineDependent(marketKey)
	spread := isSpreadKey(marketKey)

	var groups []*marketGroup
	for i := range match.Quotes {
		q := &match.Quotes[i]
		if !strings.EqualFold(q.MarketKey, marketKey) {
			continue
		}
		if !validPrice(q.Price) {
			continue
		}

		var key *float64
		if lineDependent && q.Line != nil {
			v := *q.Line
			if spread {
				v = math.Abs(v)
			}
			key = &v
		}

		var group *marketGroup
		for _, g := range groups {
			if g.sameLine(key) {
				group = g
				break
			}
		}
		if group == nil {
			group = &marketGroup{
				marketKey: marketKey,
				line:      key,
				outcomes:  make(map[string][]Quote),
			}
			groups = append(groups, group)
		}
		group.outcomes[q.OutcomeName] = append(group.outcomes[q.OutcomeName], *q)
	}

	// Deterministic group order regardless of quote arrival order:
	// nil-line fallback group first, then ascending line.
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].line, groups[j].line
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return *a < *b
	})
	return groups
}

func validPrice(price float64) bool {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return false
	}
	return price > minValidPrice && price <= maxValidPrice
}

func isSpreadKey(marketKey string) bool {
	return strings.Contains(strings.ToLower(marketKey), "spreads")
}

func isTotalsKey(marketKey string) bool {
	return strings.Contains(strings.ToLower(marketKey), "totals")
}

var lineTokenRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// lineFromName pulls a numeric point out of an outcome name such as
// "Over 5.5" or "Arsenal -1.5". Returns false when no token is present.
func lineFromName(name string) (float64, bool) {
	token := lineTokenRe.FindString(name)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
