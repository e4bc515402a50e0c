package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkarlsson/surebet/internal/feed"
	"github.com/mkarlsson/surebet/internal/kafka"
	"github.com/mkarlsson/surebet/internal/logging"
	"github.com/mkarlsson/surebet/internal/oddsapi"
	"github.com/mkarlsson/surebet/internal/queue"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("MATCHES_KAFKA_TOPIC", kafka.DefaultMatchesTopic)
	interval := envDuration("ODDS_POLL_INTERVAL", 5*time.Minute)

	client, err := oddsapi.NewClient(oddsapi.Config{
		APIKey:  os.Getenv("ODDS_API_KEY"),
		BaseURL: os.Getenv("ODDS_API_BASE_URL"),
	})
	if err != nil {
		logging.Fatalf("[odds-collector] client: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[odds-collector] wait for broker: %v", err)
	}
	cancel()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
	if err := kafka.EnsureTopic(ensureCtx, brokers, topic); err != nil {
		logging.Errorf("[odds-collector] ensure topic warning: %v", err)
	}
	cancelEnsure()

	writer := kafka.NewWriter(brokers, topic)
	defer writer.Close()

	opts := feed.FetchOptions{
		Sports:  envList("ODDS_SPORTS"),
		Regions: envList("ODDS_REGIONS"),
		Markets: envList("ODDS_MARKETS"),
	}

	logging.Infof("[odds-collector] publishing to %s every %s", topic, interval)
	feed.RunLoop(ctx, client, opts, interval, func(ctx context.Context, events []feed.Event) error {
		if err := queue.PublishEvents(ctx, writer, events); err != nil {
			return err
		}
		remaining, used := client.RateLimits()
		logging.Infof("[odds-collector] published %d fixtures (quota remaining=%d used=%d)", len(events), remaining, used)
		return nil
	})
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

func envDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return def
}
