package engine

import "testing"

func TestMarketDisplayName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"h2h", "Moneyline"},
		{"totals", "Totals (Over/Under)"},
		{"spreads_h1", "1st Half Point Spread"},
		{"totals_q4", "4th Quarter Totals (Over/Under)"},
		{"H2H", "Moneyline"},
		{"player_points", "Player Points"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MarketDisplayName(tt.key); got != tt.want {
			t.Errorf("MarketDisplayName(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		marketKey string
		line      float64
		want      string
	}{
		{"spreads", 1.5, "+1.5"},
		{"spreads", -1.5, "-1.5"},
		{"spreads", 0, "0"},
		{"totals", 5.5, "5.5"},
		{"totals", 10, "10"},
	}
	for _, tt := range tests {
		if got := FormatLine(tt.marketKey, tt.line); got != tt.want {
			t.Errorf("FormatLine(%q, %v) = %q, want %q", tt.marketKey, tt.line, got, tt.want)
		}
	}
}
