package engine

import (
	"testing"
	"time"
)

func TestTotals_MismatchedLinesRejected(t *testing.T) {
	eng := testEngine()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "totals", OutcomeName: "Over 5.5", Price: 2.1},
		Quote{Bookmaker: "fanduel", MarketKey: "totals", OutcomeName: "Under 6.0", Price: 2.1},
	)
	if op := eng.EvaluateMatch(match, "totals"); op != nil {
		t.Fatalf("over 5.5 against under 6.0 is not a hedge, got %+v", op)
	}
}

func TestTotals_BareOutcomesRejected(t *testing.T) {
	eng := testEngine()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "totals", OutcomeName: "Over", Price: 2.1},
		Quote{Bookmaker: "fanduel", MarketKey: "totals", OutcomeName: "Under", Price: 2.1},
	)
	if op := eng.EvaluateMatch(match, "totals"); op != nil {
		t.Fatalf("bare Over/Under without any line must be rejected, got %+v", op)
	}
}

func TestTotals_MatchingLinesAccepted(t *testing.T) {
	eng := testEngine()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "totals", OutcomeName: "Over", Price: 2.1, Line: pf(2.5)},
		Quote{Bookmaker: "fanduel", MarketKey: "totals", OutcomeName: "Under", Price: 2.1, Line: pf(2.5)},
	)
	op := eng.EvaluateMatch(match, "totals")
	if op == nil {
		t.Fatal("totals pair at the same line should produce an opportunity")
	}
	if op.Line == nil || *op.Line != 2.5 {
		t.Errorf("opportunity line = %v, want 2.5", op.Line)
	}
}

func TestSpread_OppositeSidesAccepted(t *testing.T) {
	eng := testEngine()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "spreads", OutcomeName: "Arsenal -1.5", Price: 2.1, Line: pf(-1.5)},
		Quote{Bookmaker: "fanduel", MarketKey: "spreads", OutcomeName: "Chelsea +1.5", Price: 2.1, Line: pf(1.5)},
	)
	if op := eng.EvaluateMatch(match, "spreads"); op == nil {
		t.Fatal("opposite sides of the same handicap should produce an opportunity")
	}
}

func TestCheckSpread_FairPricesPassValidation(t *testing.T) {
	// At 2.0/2.0 the combination carries no edge, but the group itself is a
	// coherent market and validation must not be the stage that drops it.
	cfg := testConfig()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "spreads", OutcomeName: "Arsenal -1.5", Price: 2.0, Line: pf(-1.5)},
		Quote{Bookmaker: "fanduel", MarketKey: "spreads", OutcomeName: "Chelsea +1.5", Price: 2.0, Line: pf(1.5)},
	)
	groups := buildGroups(&cfg, match, "spreads")
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	best := selectBestPrices(groups[0])
	if reason := checkSpread(groups[0], match, best); reason != "" {
		t.Errorf("fair two-sided spread failed validation: %s", reason)
	}
}

func TestSpread_SameTeamBothSidesRejected(t *testing.T) {
	eng := testEngine()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "spreads", OutcomeName: "Arsenal -1.5", Price: 2.1, Line: pf(-1.5)},
		Quote{Bookmaker: "fanduel", MarketKey: "spreads", OutcomeName: "Arsenal +1.5", Price: 2.1, Line: pf(1.5)},
	)
	if op := eng.EvaluateMatch(match, "spreads"); op != nil {
		t.Fatalf("both outcomes on the same team is a listing glitch, got %+v", op)
	}
}

func TestSpread_ImpliedProbabilityGuard(t *testing.T) {
	eng := testEngine()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "spreads", OutcomeName: "Arsenal -1.5", Price: 50, Line: pf(-1.5)},
		Quote{Bookmaker: "fanduel", MarketKey: "spreads", OutcomeName: "Chelsea +1.5", Price: 60, Line: pf(1.5)},
	)
	if op := eng.EvaluateMatch(match, "spreads"); op != nil {
		t.Fatalf("combined implied probability under 50%% is junk data, got %+v", op)
	}
}

func TestSpread_SimilarPricesWithoutLinesRejected(t *testing.T) {
	// Without signed lines we cannot confirm the outcomes hedge each other,
	// and near-equal prices on a spread usually mean the same side listed twice.
	eng := testEngine()
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "spreads", OutcomeName: "Arsenal", Price: 2.05},
		Quote{Bookmaker: "fanduel", MarketKey: "spreads", OutcomeName: "Chelsea", Price: 2.1},
	)
	if op := eng.EvaluateMatch(match, "spreads"); op != nil {
		t.Fatalf("lineless spread quotes with near-equal prices must be rejected, got %+v", op)
	}
}

func TestStaleness(t *testing.T) {
	eng := testEngine()

	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.1},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.1},
	)
	match.CommenceTime = testNow.Add(-25 * time.Hour)
	if op := eng.EvaluateMatch(match, "h2h"); op != nil {
		t.Fatalf("quotes 25h after kickoff are stale, got %+v", op)
	}

	match.CommenceTime = time.Time{}
	if op := eng.EvaluateMatch(match, "h2h"); op == nil {
		t.Fatal("unknown commence time must skip the staleness check, not reject")
	}
}
