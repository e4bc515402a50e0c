package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/llm"
)

const systemPrompt = "You are a strict sports-betting arbitrage validator. Decide whether a set of best-priced outcomes from different bookmakers all belong to the same fixture and the same market. Respond only with JSON."

// Service cross-checks suspicious opportunities via LLM. It is advisory:
// callers log the verdict but never block the pipeline on an error here.
type Service struct {
	llm          *llm.Client
	systemPrompt string
}

// NewService creates a validator.
func NewService(cfg Config) (*Service, error) {
	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("validator: llm client is required")
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = systemPrompt
	}
	return &Service{llm: cfg.LLMClient, systemPrompt: system}, nil
}

// Validate asks the LLM whether the opportunity's outcomes reference one
// fixture and market, and returns the parsed verdict.
func (s *Service) Validate(ctx context.Context, op *engine.Opportunity) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("validator: service is nil")
	}
	if op == nil {
		return nil, fmt.Errorf("validator: opportunity is nil")
	}

	inputJSON, err := json.MarshalIndent(buildPromptPayload(op), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("validator: marshal prompt input: %w", err)
	}

	userPrompt := strings.Join([]string{
		"The following arbitrage opportunity was detected across sports bookmakers, but carries data-quality warnings.",
		"A risk-free combination only exists if every outcome listed belongs to the exact same fixture (same two teams, same start time) and the exact same market at the same line.",
		"Team names may be spelled differently across bookmakers (abbreviations, prefixes like FC, transliterations); that alone is fine.",
		"Answer false if any outcome could belong to a different fixture, a different period of the match, or a different line.",
		"If unsure, treat it as not the same fixture.",
		"Return EXACTLY this JSON format:\n{\n  \"SameFixture\": true|false,\n  \"Reason\": \"short explanation\"\n}\n\nInput JSON:\n" + string(inputJSON),
	}, "\n")

	raw, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("validator: llm call: %w", err)
	}

	res, err := parseResult(raw)
	if err != nil {
		return nil, fmt.Errorf("validator: parse response: %w", err)
	}
	return res, nil
}
