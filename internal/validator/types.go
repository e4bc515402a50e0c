package validator

import "github.com/mkarlsson/surebet/internal/llm"

// Result is the structured LLM verdict on an odd-looking opportunity.
type Result struct {
	SameFixture bool   `json:"SameFixture"`
	Reason      string `json:"Reason"`
}

// Config controls the validator behavior.
type Config struct {
	LLMClient    *llm.Client
	SystemPrompt string
}
