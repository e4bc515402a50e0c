// odds_scan fetches current odds once, runs the arbitrage engine over every
// fixture, and prints the ranked opportunities. Useful for smoke-testing an
// API key and config file without Kafka or Redis.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mkarlsson/surebet/internal/config"
	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/feed"
	"github.com/mkarlsson/surebet/internal/logging"
	"github.com/mkarlsson/surebet/internal/oddsapi"
	"github.com/mkarlsson/surebet/internal/rank"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	provider, err := config.NewProvider(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logging.Fatalf("[odds-scan] config: %v", err)
	}
	snap := provider.Snapshot()
	eng := engine.New(snap.Engine)

	client, err := oddsapi.NewClient(oddsapi.Config{
		APIKey:  os.Getenv("ODDS_API_KEY"),
		BaseURL: os.Getenv("ODDS_API_BASE_URL"),
	})
	if err != nil {
		logging.Fatalf("[odds-scan] client: %v", err)
	}

	opts := feed.FetchOptions{
		Sports:  envList("ODDS_SPORTS"),
		Regions: envList("ODDS_REGIONS"),
		Markets: envList("ODDS_MARKETS"),
	}
	events, err := client.Fetch(ctx, opts)
	if err != nil {
		logging.Fatalf("[odds-scan] fetch: %v", err)
	}
	logging.Infof("[odds-scan] evaluating %d fixtures", len(events))

	agg := rank.NewAggregator()
	for i := range events {
		match := events[i].ToMatch()
		agg.Add(eng.EvaluateAllMarkets(&match)...)
	}

	ranked := rank.FilterByRegion(agg.Ranked(), snap.AllowedRegions, snap.BookRegions)
	if len(ranked) == 0 {
		fmt.Println("no opportunities found")
		return
	}

	for i := range ranked {
		op := &ranked[i]
		fmt.Printf("%2d. %s\n", i+1, op.Summary())
		for _, name := range sortedNames(op) {
			bq := op.BestOdds[name]
			line := ""
			if bq.Line != nil {
				line = " " + engine.FormatLine(op.MarketKey, *bq.Line)
			}
			fmt.Printf("      %-24s %.3f @ %s%s\n", name, bq.Price, bq.Bookmaker, line)
		}
	}

	remaining, used := client.RateLimits()
	fmt.Printf("\n%d opportunities (API quota remaining=%d used=%d)\n", len(ranked), remaining, used)
}

func sortedNames(op *engine.Opportunity) []string {
	names := make([]string, 0, len(op.BestOdds))
	for name := range op.BestOdds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
