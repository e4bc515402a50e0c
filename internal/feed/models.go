package feed

import (
	"strings"
	"time"

	"github.com/mkarlsson/surebet/internal/engine"
)

// Event is one fixture as delivered by an odds provider: quotes nested per
// bookmaker, per market. This is the wire shape published to Kafka; the
// engine consumes the flattened form produced by ToMatch.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one book's quotes for the event.
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market is one market type quoted by one bookmaker.
type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update,omitempty"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Outcome is a single priced selection. Point is the spread or total value
// and is absent for moneyline-style markets.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// ToMatch flattens the nested bookmaker/market/outcome layout into the
// engine's working quote list. Order is preserved (bookmakers, then markets,
// then outcomes) because the engine breaks best-price ties by first-seen
// bookmaker.
func (e *Event) ToMatch() engine.Match {
	m := engine.Match{
		HomeTeam:     e.HomeTeam,
		AwayTeam:     e.AwayTeam,
		CommenceTime: e.CommenceTime.UTC(),
		SportKey:     e.SportKey,
		SportTitle:   e.SportTitle,
	}
	for _, book := range e.Bookmakers {
		name := book.Key
		if strings.TrimSpace(name) == "" {
			name = book.Title
		}
		for _, market := range book.Markets {
			for _, outcome := range market.Outcomes {
				var line *float64
				if outcome.Point != nil {
					v := *outcome.Point
					line = &v
				}
				m.Quotes = append(m.Quotes, engine.Quote{
					Bookmaker:   name,
					MarketKey:   market.Key,
					OutcomeName: outcome.Name,
					Price:       outcome.Price,
					Line:        line,
				})
			}
		}
	}
	return m
}
