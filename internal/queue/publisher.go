package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/feed"
	"github.com/mkarlsson/surebet/internal/rank"
)

// PublishEvents writes one message per fixture, keyed by sport and event ID
// so re-polls of the same fixture land on the same partition.
func PublishEvents(ctx context.Context, writer *kafka.Writer, events []feed.Event) error {
	if writer == nil || len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for i := range events {
		ev := &events[i]
		if len(ev.Bookmakers) == 0 {
			continue
		}
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", ev.ID, err)
		}
		key := fmt.Sprintf("%s-%s", ev.SportKey, ev.ID)
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: payload})
	}

	if len(msgs) == 0 {
		return nil
	}
	return writer.WriteMessages(ctx, msgs...)
}

// PublishOpportunities writes detected opportunities keyed by their dedup
// key, so downstream consumers can compact per fixture+market.
func PublishOpportunities(ctx context.Context, writer *kafka.Writer, ops []engine.Opportunity) error {
	if writer == nil || len(ops) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(ops))
	for i := range ops {
		payload, err := json.Marshal(&ops[i])
		if err != nil {
			return fmt.Errorf("marshal opportunity %s/%s: %w", ops[i].HomeTeam, ops[i].MarketKey, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(rank.Key(&ops[i])), Value: payload})
	}
	return writer.WriteMessages(ctx, msgs...)
}
