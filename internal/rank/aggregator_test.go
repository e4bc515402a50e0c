package rank

import (
	"testing"
	"time"

	"github.com/mkarlsson/surebet/internal/engine"
)

func testOpportunity(market string, profit float64, books ...string) engine.Opportunity {
	best := make(map[string]engine.BestQuote, len(books))
	for i, book := range books {
		best[string(rune('A'+i))] = engine.BestQuote{Bookmaker: book, Price: 2.0}
	}
	return engine.Opportunity{
		SportKey:         "soccer_epl",
		HomeTeam:         "Arsenal",
		AwayTeam:         "Chelsea",
		CommenceTime:     time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
		MarketKey:        market,
		ProfitPercentage: profit,
		BestOdds:         best,
	}
}

func TestAggregator_HigherProfitWins(t *testing.T) {
	agg := NewAggregator()
	agg.Add(testOpportunity("h2h", 2.0, "draftkings", "fanduel"))
	agg.Add(testOpportunity("h2h", 4.5, "betmgm", "caesars"))
	agg.Add(testOpportunity("h2h", 3.0, "bovada", "betrivers"))

	if agg.Len() != 1 {
		t.Fatalf("same fixture+market must collapse to one entry, got %d", agg.Len())
	}
	got := agg.Ranked()[0]
	if got.ProfitPercentage != 4.5 {
		t.Errorf("kept profit = %v, want 4.5", got.ProfitPercentage)
	}
}

func TestAggregator_EqualProfitKeepsFirst(t *testing.T) {
	agg := NewAggregator()
	agg.Add(testOpportunity("h2h", 2.0, "draftkings", "fanduel"))
	agg.Add(testOpportunity("h2h", 2.0, "betmgm", "caesars"))

	got := agg.Ranked()[0]
	if _, ok := got.BestOdds["A"]; !ok || got.BestOdds["A"].Bookmaker != "draftkings" {
		t.Errorf("equal profit should keep the first entry, got books %+v", got.BestOdds)
	}
}

func TestAggregator_RankedByProfitDescending(t *testing.T) {
	agg := NewAggregator()
	agg.Add(
		testOpportunity("h2h", 1.2, "draftkings", "fanduel"),
		testOpportunity("totals", 6.8, "betmgm", "caesars"),
		testOpportunity("spreads", 3.3, "bovada", "betrivers"),
	)

	ranked := agg.Ranked()
	if len(ranked) != 3 {
		t.Fatalf("got %d opportunities, want 3", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].ProfitPercentage > ranked[i-1].ProfitPercentage {
			t.Fatalf("ranked out of order at %d: %v after %v", i,
				ranked[i].ProfitPercentage, ranked[i-1].ProfitPercentage)
		}
	}
}

func TestFilterByRegion(t *testing.T) {
	ops := []engine.Opportunity{
		testOpportunity("h2h", 2.0, "draftkings", "fanduel"),
		testOpportunity("totals", 3.0, "bet365", "pinnacle"),
		testOpportunity("spreads", 4.0, "draftkings", "obscurebook"),
	}

	usOnly := FilterByRegion(ops, map[Region]bool{RegionUS: true}, nil)
	if len(usOnly) != 2 {
		t.Fatalf("got %d opportunities, want 2 (US pair and US+unknown)", len(usOnly))
	}
	for _, op := range usOnly {
		if op.MarketKey == "totals" {
			t.Error("UK/EU-only opportunity should have been filtered")
		}
	}

	all := FilterByRegion(ops, nil, nil)
	if len(all) != 3 {
		t.Errorf("empty allow set must pass everything, got %d", len(all))
	}
}
