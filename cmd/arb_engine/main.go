package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/mkarlsson/surebet/internal/cache"
	"github.com/mkarlsson/surebet/internal/config"
	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/feed"
	"github.com/mkarlsson/surebet/internal/kafka"
	"github.com/mkarlsson/surebet/internal/llm"
	"github.com/mkarlsson/surebet/internal/logging"
	"github.com/mkarlsson/surebet/internal/queue"
	"github.com/mkarlsson/surebet/internal/rank"
	sqlstore "github.com/mkarlsson/surebet/internal/storage/sqlite"
	"github.com/mkarlsson/surebet/internal/validator"
	"github.com/mkarlsson/surebet/internal/workers"
)

func main() {
	godotenv.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	brokers := kafka.Brokers()
	topic := kafka.TopicFromEnv("MATCHES_KAFKA_TOPIC", kafka.DefaultMatchesTopic)
	outTopic := kafka.TopicFromEnv("OPPORTUNITIES_KAFKA_TOPIC", kafka.DefaultOpportunitiesTopic)
	group := envString("ARB_ENGINE_GROUP", "arb-engine")
	workerCount := envInt("ARB_ENGINE_WORKERS", 2)

	provider, err := config.NewProvider(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logging.Fatalf("[arb-engine] config: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	if err := kafka.WaitForBroker(waitCtx, brokers); err != nil {
		logging.Fatalf("[arb-engine] wait for broker: %v", err)
	}
	cancel()

	for _, t := range []string{topic, outTopic} {
		ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, brokers, t); err != nil {
			logging.Errorf("[arb-engine] ensure topic %s warning: %v", t, err)
		}
		cancelEnsure()
	}

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("[arb-engine] open sqlite: %v", err)
	}
	defer store.Close()

	oppCache := buildOpportunityCache()
	if oppCache != nil {
		defer oppCache.Close()
	}
	checker, verdictCache := buildValidator()
	if verdictCache != nil {
		defer verdictCache.Close()
	}

	writer := kafka.NewWriter(brokers, outTopic)
	defer writer.Close()

	proc := &processor{
		provider:     provider,
		store:        store,
		oppCache:     oppCache,
		checker:      checker,
		verdictCache: verdictCache,
		writer:       writer,
	}

	logging.Infof("[arb-engine] consuming %s with group %s (%d workers, config gen=%d)",
		topic, group, workerCount, provider.Snapshot().Generation)
	workers.Run(ctx, brokers, topic, group, workerCount, proc.handle)
}

type processor struct {
	provider     *config.Provider
	store        *sqlstore.Store
	oppCache     cache.OpportunityCache
	checker      *validator.Service
	verdictCache cache.VerdictCache
	writer       *kafkago.Writer
}

func (p *processor) handle(ctx context.Context, event *feed.Event) error {
	snap := p.provider.Snapshot()
	eng := engine.New(snap.Engine)

	match := event.ToMatch()
	ops := eng.EvaluateAllMarkets(&match)
	if len(ops) == 0 {
		return nil
	}
	ops = rank.FilterByRegion(ops, snap.AllowedRegions, snap.BookRegions)

	var fresh []engine.Opportunity
	for i := range ops {
		op := &ops[i]
		if p.isDuplicate(ctx, op) {
			continue
		}
		fresh = append(fresh, *op)

		id, err := p.store.InsertOpportunity(ctx, op)
		if err != nil {
			logging.Errorf("[arb-engine] sqlite error: %v", err)
		}
		logging.Infof("[arb-opportunity] id=%s %s", id, op.Summary())
		for _, w := range op.ValidationWarnings {
			logging.Warnf("[arb-opportunity] id=%s warning: %s", id, w)
		}

		p.crossCheck(ctx, op, id)
	}

	if err := queue.PublishOpportunities(ctx, p.writer, fresh); err != nil {
		logging.Errorf("[arb-engine] publish opportunities: %v", err)
	}
	return nil
}

func (p *processor) isDuplicate(ctx context.Context, op *engine.Opportunity) bool {
	if p.oppCache == nil {
		return false
	}
	key := rank.Key(op)
	record, found, err := p.oppCache.Get(ctx, key)
	if err != nil {
		logging.Errorf("[arb-engine] opportunity cache get: %v", err)
		return false
	}
	if found && record.ProfitPercentage >= op.ProfitPercentage {
		return true
	}
	rec := cache.NewOpportunityRecord(op.ProfitPercentage, op.MarketKey, op.Bookmakers())
	if err := p.oppCache.Set(ctx, key, rec); err != nil {
		logging.Errorf("[arb-engine] opportunity cache set: %v", err)
	}
	return false
}

// crossCheck sends warning-laden opportunities through the LLM fixture
// validator. Purely advisory: failures are logged and the pipeline moves on.
func (p *processor) crossCheck(ctx context.Context, op *engine.Opportunity, id string) {
	if p.checker == nil || len(op.ValidationWarnings) == 0 {
		return
	}

	key := validator.CacheKey(op)
	if p.verdictCache != nil {
		if verdict, found, err := p.verdictCache.Get(ctx, key); err == nil && found {
			logging.Infof("[arb-engine] id=%s cached fixture verdict: same=%v", id, verdict)
			return
		}
	}

	res, err := p.checker.Validate(ctx, op)
	if err != nil {
		logging.Errorf("[arb-engine] id=%s fixture validation: %v", id, err)
		return
	}
	logging.Infof("[arb-engine] id=%s fixture verdict: same=%v reason=%s", id, res.SameFixture, res.Reason)
	if p.verdictCache != nil {
		if err := p.verdictCache.Set(ctx, key, res.SameFixture); err != nil {
			logging.Errorf("[arb-engine] verdict cache set: %v", err)
		}
	}
}

func buildOpportunityCache() cache.OpportunityCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		logging.Infof("[arb-engine] REDIS_ADDR unset, duplicate suppression disabled")
		return nil
	}
	ttl := time.Duration(envInt("OPP_CACHE_TTL_HOURS", 24)) * time.Hour
	c, err := cache.NewRedisOpportunityCache(addr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0), ttl, "")
	if err != nil {
		logging.Fatalf("[arb-engine] opportunity cache: %v", err)
	}
	return c
}

func buildValidator() (*validator.Service, cache.VerdictCache) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logging.Infof("[arb-engine] OPENAI_API_KEY unset, fixture cross-check disabled")
		return nil, nil
	}
	client, err := llm.New(llm.Config{
		APIKey:  apiKey,
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
	})
	if err != nil {
		logging.Fatalf("[arb-engine] llm client: %v", err)
	}
	svc, err := validator.NewService(validator.Config{LLMClient: client})
	if err != nil {
		logging.Fatalf("[arb-engine] validator: %v", err)
	}

	var verdicts cache.VerdictCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		verdicts, err = cache.NewRedisVerdictCache(addr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0), 0, "")
		if err != nil {
			logging.Fatalf("[arb-engine] verdict cache: %v", err)
		}
	}
	return svc, verdicts
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
