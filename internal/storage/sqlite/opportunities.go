package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/rank"
)

// InsertOpportunity stores one detected opportunity and returns its ID.
func (s *Store) InsertOpportunity(ctx context.Context, op *engine.Opportunity) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("sqlite store not initialized")
	}
	if op == nil {
		return "", fmt.Errorf("opportunity is nil")
	}

	bestJSON, err := json.Marshal(op.BestOdds)
	if err != nil {
		return "", fmt.Errorf("marshal best odds: %w", err)
	}
	warningsJSON, err := json.Marshal(op.ValidationWarnings)
	if err != nil {
		return "", fmt.Errorf("marshal warnings: %w", err)
	}

	id := uuid.NewString()
	var line any
	if op.Line != nil {
		line = *op.Line
	}
	var commence any
	if !op.CommenceTime.IsZero() {
		commence = op.CommenceTime.UTC().Format(time.RFC3339Nano)
	}

	const query = `
INSERT INTO opportunities (
	id, dedup_key, sport_key, sport_title, home_team, away_team, commence_time,
	market_key, market_name, line, profit_pct, total_inverse_odds, odds_ratio,
	outcome_count, best_odds_json, warnings_json, detected_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	_, err = s.db.ExecContext(
		ctx,
		query,
		id,
		rank.Key(op),
		op.SportKey,
		op.SportTitle,
		op.HomeTeam,
		op.AwayTeam,
		commence,
		op.MarketKey,
		op.MarketDisplayName,
		line,
		op.ProfitPercentage,
		op.TotalInverseOdds,
		op.OddsRatio,
		op.OutcomeCount,
		string(bestJSON),
		string(warningsJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// StoredOpportunity is one persisted row.
type StoredOpportunity struct {
	ID               string
	SportTitle       string
	HomeTeam         string
	AwayTeam         string
	MarketName       string
	ProfitPercentage float64
	DetectedAt       string
}

// TopOpportunities returns the highest-profit rows, newest first within
// equal profit.
func (s *Store) TopOpportunities(ctx context.Context, limit int) ([]StoredOpportunity, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, sport_title, home_team, away_team, market_name, profit_pct, detected_at
FROM opportunities
ORDER BY profit_pct DESC, detected_at DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredOpportunity
	for rows.Next() {
		var rec StoredOpportunity
		if err := rows.Scan(&rec.ID, &rec.SportTitle, &rec.HomeTeam, &rec.AwayTeam, &rec.MarketName, &rec.ProfitPercentage, &rec.DetectedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
