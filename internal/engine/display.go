package engine

import (
	"fmt"
	"strings"
)

var marketDisplayNames = map[string]string{
	"h2h":                   "Moneyline",
	"h2h_3_way":             "Moneyline (3-Way)",
	"h2h_lay":               "Moneyline (Lay)",
	"spreads":               "Point Spread",
	"alternate_spreads":     "Alternate Spread",
	"totals":                "Totals (Over/Under)",
	"alternate_totals":      "Alternate Total",
	"team_totals":           "Team Total",
	"alternate_team_totals": "Alternate Team Total",
	"outrights":             "Outright Winner",
	"outrights_lay":         "Outright Winner (Lay)",
	"draw_no_bet":           "Draw No Bet",
	"btts":                  "Both Teams To Score",
}

var periodSuffixes = map[string]string{
	"_h1": "1st Half",
	"_h2": "2nd Half",
	"_q1": "1st Quarter",
	"_q2": "2nd Quarter",
	"_q3": "3rd Quarter",
	"_q4": "4th Quarter",
	"_p1": "1st Period",
	"_p2": "2nd Period",
	"_p3": "3rd Period",
}

// MarketDisplayName maps a market key to a human-readable name, handling
// period-qualified variants such as "spreads_h1". Unknown keys are title
// cased from their underscore form rather than dropped.
func MarketDisplayName(marketKey string) string {
	key := strings.ToLower(strings.TrimSpace(marketKey))
	if name, ok := marketDisplayNames[key]; ok {
		return name
	}
	for suffix, period := range periodSuffixes {
		if strings.HasSuffix(key, suffix) {
			base := strings.TrimSuffix(key, suffix)
			if name, ok := marketDisplayNames[base]; ok {
				return period + " " + name
			}
		}
	}
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FormatLine renders a point for display: spreads carry an explicit sign
// ("+1.5" / "-1.5"), totals are plain ("5.5").
func FormatLine(marketKey string, line float64) string {
	if isSpreadKey(marketKey) && line > 0 {
		return fmt.Sprintf("+%.4g", line)
	}
	return fmt.Sprintf("%.4g", line)
}

// Summary renders a single log-friendly line for an opportunity.
func (o *Opportunity) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s vs %s %s", o.HomeTeam, o.AwayTeam, o.MarketDisplayName)
	if o.Line != nil {
		fmt.Fprintf(&b, " @%s", FormatLine(o.MarketKey, *o.Line))
	}
	fmt.Fprintf(&b, " profit=%.2f%% books=%s", o.ProfitPercentage, strings.Join(o.Bookmakers(), ","))
	return b.String()
}
