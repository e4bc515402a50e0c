package validator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/hashutil"
)

type promptPayload struct {
	Sport          string           `json:"sport"`
	HomeTeam       string           `json:"home_team"`
	AwayTeam       string           `json:"away_team"`
	CommenceUTC    string           `json:"commence_utc,omitempty"`
	Market         string           `json:"market"`
	GeneratedAtUTC string           `json:"generated_at_utc"`
	Outcomes       []outcomePayload `json:"outcomes"`
	Warnings       []string         `json:"warnings,omitempty"`
}

type outcomePayload struct {
	Name      string  `json:"name"`
	Bookmaker string  `json:"bookmaker"`
	Price     float64 `json:"price"`
	Line      string  `json:"line,omitempty"`
}

func buildPromptPayload(op *engine.Opportunity) *promptPayload {
	p := &promptPayload{
		Sport:          op.SportTitle,
		HomeTeam:       op.HomeTeam,
		AwayTeam:       op.AwayTeam,
		Market:         op.MarketDisplayName,
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Warnings:       op.ValidationWarnings,
	}
	if !op.CommenceTime.IsZero() {
		p.CommenceUTC = op.CommenceTime.UTC().Format(time.RFC3339)
	}
	for _, name := range sortedOutcomeNames(op) {
		bq := op.BestOdds[name]
		out := outcomePayload{Name: name, Bookmaker: bq.Bookmaker, Price: bq.Price}
		if bq.Line != nil {
			out.Line = engine.FormatLine(op.MarketKey, *bq.Line)
		}
		p.Outcomes = append(p.Outcomes, out)
	}
	return p
}

func sortedOutcomeNames(op *engine.Opportunity) []string {
	names := make([]string, 0, len(op.BestOdds))
	for name := range op.BestOdds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CacheKey builds a content-addressed key for the verdict cache: the same
// fixture, market, and outcome set always maps to the same verdict.
func CacheKey(op *engine.Opportunity) string {
	parts := []string{op.SportKey, op.HomeTeam, op.AwayTeam, op.MarketKey}
	for _, name := range sortedOutcomeNames(op) {
		parts = append(parts, name, op.BestOdds[name].Bookmaker)
	}
	return hashutil.HashStrings(parts...)
}

func parseResult(raw string) (*Result, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("validator: empty llm response")
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
