package engine

import (
	"sort"
	"time"
)

// Quote is one bookmaker's price for one outcome of one market on one match.
// Price is decimal odds; Line is the spread/total point and is nil for
// moneyline-style markets.
type Quote struct {
	Bookmaker   string   `json:"bookmaker"`
	MarketKey   string   `json:"market_key"`
	OutcomeName string   `json:"outcome_name"`
	Price       float64  `json:"price"`
	Line        *float64 `json:"line,omitempty"`
}

// Match is one fixture together with every quote collected for it.
// CommenceTime is stored in UTC; a zero value means the provider gave no
// usable timestamp and timing checks are skipped for the match.
type Match struct {
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	CommenceTime time.Time `json:"commence_time"`
	SportKey     string    `json:"sport_key"`
	SportTitle   string    `json:"sport_title"`
	Quotes       []Quote   `json:"quotes"`
}

// BestQuote is the winning price for one outcome.
type BestQuote struct {
	Bookmaker string   `json:"bookmaker"`
	Price     float64  `json:"price"`
	Line      *float64 `json:"line,omitempty"`
}

// Opportunity is a detected risk-free combination for one market on one
// match. Values are final once returned; the caller owns aggregation,
// deduplication, and sorting.
type Opportunity struct {
	HomeTeam           string               `json:"home_team"`
	AwayTeam           string               `json:"away_team"`
	CommenceTime       time.Time            `json:"commence_time"`
	SportKey           string               `json:"sport_key"`
	SportTitle         string               `json:"sport_title"`
	MarketKey          string               `json:"market_key"`
	MarketDisplayName  string               `json:"market_display_name"`
	Line               *float64             `json:"line,omitempty"`
	ProfitPercentage   float64              `json:"profit_percentage"`
	TotalInverseOdds   float64              `json:"total_inverse_odds"`
	BestOdds           map[string]BestQuote `json:"best_odds"`
	OutcomeCount       int                  `json:"outcome_count"`
	OddsRatio          float64              `json:"odds_ratio"`
	ValidationWarnings []string             `json:"validation_warnings,omitempty"`
}

// Bookmakers returns the distinct canonical-cased bookmaker titles backing
// the opportunity, in sorted order.
func (o *Opportunity) Bookmakers() []string {
	seen := make(map[string]bool, len(o.BestOdds))
	out := make([]string, 0, len(o.BestOdds))
	for _, bq := range o.BestOdds {
		if !seen[bq.Bookmaker] {
			seen[bq.Bookmaker] = true
			out = append(out, bq.Bookmaker)
		}
	}
	sort.Strings(out)
	return out
}
