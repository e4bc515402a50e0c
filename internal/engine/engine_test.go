package engine

import (
	"math"
	"reflect"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testEngine(overrides ...func(*Config)) *Engine {
	cfg := Config{Now: func() time.Time { return testNow }}
	for _, o := range overrides {
		o(&cfg)
	}
	return New(cfg)
}

func pf(v float64) *float64 {
	return &v
}

func testMatch(quotes ...Quote) *Match {
	return &Match{
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		CommenceTime: testNow.Add(24 * time.Hour),
		SportKey:     "soccer_epl",
		SportTitle:   "EPL",
		Quotes:       quotes,
	}
}

func TestEvaluateMatch_DetectsArbitrage(t *testing.T) {
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.0},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.2},
	)

	op := testEngine().EvaluateMatch(match, "h2h")
	if op == nil {
		t.Fatal("expected an opportunity")
	}

	wantInverse := 1/2.0 + 1/2.2
	if math.Abs(op.TotalInverseOdds-wantInverse) > 1e-9 {
		t.Errorf("total inverse odds = %v, want %v", op.TotalInverseOdds, wantInverse)
	}
	if op.ProfitPercentage != 4.76 {
		t.Errorf("profit = %v, want 4.76", op.ProfitPercentage)
	}
	if op.OutcomeCount != 2 {
		t.Errorf("outcome count = %d, want 2", op.OutcomeCount)
	}
	if got := op.BestOdds["Arsenal"].Bookmaker; got != "draftkings" {
		t.Errorf("best Arsenal book = %s, want draftkings", got)
	}
	if op.MarketDisplayName != "Moneyline" {
		t.Errorf("display name = %s, want Moneyline", op.MarketDisplayName)
	}
}

func TestEvaluateMatch_NoArbitrageAtExactlyOne(t *testing.T) {
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.0},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.0},
	)
	if op := testEngine().EvaluateMatch(match, "h2h"); op != nil {
		t.Fatalf("inverse sum of exactly 1.0 must yield no opportunity, got %+v", op)
	}
}

func TestEvaluateMatch_ProfitNoiseFloor(t *testing.T) {
	// Inverse sum 0.99975 -> profit 0.025%, below the 0.1 floor.
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.001},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.0},
	)
	if op := testEngine().EvaluateMatch(match, "h2h"); op != nil {
		t.Fatalf("profit below the noise floor must yield no opportunity, got %v%%", op.ProfitPercentage)
	}
}

func TestEvaluateMatch_OddsRatioGuard(t *testing.T) {
	// Inverse sum ~0.965 shows profit, but the 76x price disparity means
	// the quotes are almost certainly stale or mismatched.
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 1.05},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 80.0},
	)
	if op := testEngine().EvaluateMatch(match, "h2h"); op != nil {
		t.Fatalf("odds ratio above ceiling must be rejected, got %+v", op)
	}
}

func TestEvaluateMatch_SingleBookmakerRejected(t *testing.T) {
	match := testMatch(
		Quote{Bookmaker: "betfair", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.5},
		Quote{Bookmaker: "betfair", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.1},
	)
	if op := testEngine().EvaluateMatch(match, "h2h"); op != nil {
		t.Fatal("one book covering both sides must yield no opportunity")
	}
}

func TestEvaluateMatch_AliasedBookmakersRejected(t *testing.T) {
	// Two regional listings of the same exchange are one identity.
	match := testMatch(
		Quote{Bookmaker: "betfair_ex_uk", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.5},
		Quote{Bookmaker: "Betfair_EX_EU", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.1},
	)
	if op := testEngine().EvaluateMatch(match, "h2h"); op != nil {
		t.Fatal("aliased bookmaker listings must count as the same book")
	}
}

func TestEvaluateMatch_Deterministic(t *testing.T) {
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.2},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.2},
		Quote{Bookmaker: "betmgm", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.05},
	)

	eng := testEngine()
	first := eng.EvaluateMatch(match, "h2h")
	second := eng.EvaluateMatch(match, "h2h")
	if first == nil || second == nil {
		t.Fatal("expected opportunities on both runs")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	// Equal prices: the first quote in input order wins the tie.
	if got := first.BestOdds["Arsenal"].Bookmaker; got != "draftkings" {
		t.Errorf("tie broken to %s, want draftkings", got)
	}
}

func TestEvaluateMatch_HighProfitWarnedNotCapped(t *testing.T) {
	// 60% profit: must be reported, with the top warning tier attached.
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 3.2},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 3.2},
	)
	op := testEngine().EvaluateMatch(match, "h2h")
	if op == nil {
		t.Fatal("large profits must never be rejected on size alone")
	}
	if op.ProfitPercentage != 60.0 {
		t.Errorf("profit = %v, want 60.0", op.ProfitPercentage)
	}
	if !hasWarningContaining(op, "above 50%") {
		t.Errorf("expected >50%% warning tier, got %v", op.ValidationWarnings)
	}
}

func TestEvaluateMatch_OddsRatioWarningTier(t *testing.T) {
	// Ratio 12.5 is above the warning tier but below the rejection ceiling.
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 1.2},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 15.0},
	)
	op := testEngine().EvaluateMatch(match, "h2h")
	if op == nil {
		t.Fatal("expected an opportunity")
	}
	if !hasWarningContaining(op, "ratio above 10") {
		t.Errorf("expected odds-ratio warning, got %v", op.ValidationWarnings)
	}
}

func TestEvaluateMatch_UnknownOutcomeNameWarned(t *testing.T) {
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.1},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "AC Milan", Price: 2.1},
	)
	op := testEngine().EvaluateMatch(match, "h2h")
	if op == nil {
		t.Fatal("expected an opportunity")
	}
	if !hasWarningContaining(op, "neither team name") {
		t.Errorf("expected outcome-name warning, got %v", op.ValidationWarnings)
	}
}

func TestEvaluateMatch_InPlayWarned(t *testing.T) {
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.1},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.1},
	)
	match.CommenceTime = testNow.Add(-time.Hour)

	op := testEngine().EvaluateMatch(match, "h2h")
	if op == nil {
		t.Fatal("match inside the staleness window must still be evaluated")
	}
	if !hasWarningContaining(op, "already started") {
		t.Errorf("expected in-play warning, got %v", op.ValidationWarnings)
	}
}

func TestEvaluateMatch_NilAndEmptyInput(t *testing.T) {
	eng := testEngine()
	if op := eng.EvaluateMatch(nil, "h2h"); op != nil {
		t.Error("nil match must yield nil")
	}
	if op := eng.EvaluateMatch(testMatch(), "h2h"); op != nil {
		t.Error("match without quotes must yield nil")
	}
	if op := eng.EvaluateMatch(testMatch(), ""); op != nil {
		t.Error("empty market key must yield nil")
	}
}

func TestEvaluateAllMarkets(t *testing.T) {
	match := testMatch(
		Quote{Bookmaker: "draftkings", MarketKey: "h2h", OutcomeName: "Arsenal", Price: 2.0},
		Quote{Bookmaker: "fanduel", MarketKey: "h2h", OutcomeName: "Chelsea", Price: 2.2},
		Quote{Bookmaker: "draftkings", MarketKey: "totals", OutcomeName: "Over", Price: 2.05, Line: pf(2.5)},
		Quote{Bookmaker: "fanduel", MarketKey: "totals", OutcomeName: "Under", Price: 2.05, Line: pf(2.5)},
		// No second outcome: never an opportunity.
		Quote{Bookmaker: "draftkings", MarketKey: "spreads", OutcomeName: "Arsenal -1.5", Price: 2.0, Line: pf(-1.5)},
	)

	ops := testEngine().EvaluateAllMarkets(match)
	if len(ops) != 2 {
		t.Fatalf("got %d opportunities, want 2: %+v", len(ops), ops)
	}
	// Market keys are walked in sorted order.
	if ops[0].MarketKey != "h2h" || ops[1].MarketKey != "totals" {
		t.Errorf("unexpected market order: %s, %s", ops[0].MarketKey, ops[1].MarketKey)
	}
}

func hasWarningContaining(op *Opportunity, fragment string) bool {
	for _, w := range op.ValidationWarnings {
		if strings.Contains(strings.ToLower(w), strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}
