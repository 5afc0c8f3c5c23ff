package openai

import (
	"fmt"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const (
	DefaultModelTokenLimit        = 4096
	DefaultReservedResponseTokens = 70

	systemPrompt = "You are a helpful assistant."
	promptPrefix = "Categorize the following document into one of these categories: invoice, contract, report, etc. (in English). Reply with the category name only.\n\nDocument:\n"
	promptSuffix = "\n\nCategory:"
)

// PromptObserver receives the token size of each built prompt.
type PromptObserver interface {
	ObservePrompt(documentTokens int, truncated bool)
}

// PromptBuilder fits document text into the model context window.
type PromptBuilder struct {
	tokenizer Tokenizer
	limit     int
	reserved  int
	observer  PromptObserver
}

func NewPromptBuilder(tokenizer Tokenizer, modelTokenLimit, reservedResponseTokens int) *PromptBuilder {
	if modelTokenLimit <= 0 {
		modelTokenLimit = DefaultModelTokenLimit
	}
	if reservedResponseTokens < 0 {
		reservedResponseTokens = DefaultReservedResponseTokens
	}
	return &PromptBuilder{
		tokenizer: tokenizer,
		limit:     modelTokenLimit,
		reserved:  reservedResponseTokens,
	}
}

func (b *PromptBuilder) WithObserver(observer PromptObserver) *PromptBuilder {
	b.observer = observer
	return b
}

func (b *PromptBuilder) Build(text string) ([]domain.PromptMessage, error) {
	return b.BuildWithBudget(text, b.limit, b.reserved)
}

// BuildWithBudget returns the system and user turns. Text that fits the
// remaining budget is used verbatim; longer text is cut to the first
// available tokens.
func (b *PromptBuilder) BuildWithBudget(text string, modelTokenLimit, reservedResponseTokens int) ([]domain.PromptMessage, error) {
	fixed := len(b.tokenizer.Encode(systemPrompt)) + len(b.tokenizer.Encode(promptPrefix)) + reservedResponseTokens
	available := modelTokenLimit - fixed
	if available <= 0 {
		return nil, domain.WrapError(domain.ErrPromptBudgetExceeded, "build prompt",
			fmt.Errorf("limit %d leaves no room after %d fixed tokens", modelTokenLimit, fixed))
	}

	tokens := b.tokenizer.Encode(text)
	truncated := len(tokens) > available
	if truncated {
		text = b.tokenizer.Decode(tokens[:available])
	}
	if b.observer != nil {
		b.observer.ObservePrompt(min(len(tokens), available), truncated)
	}

	return []domain.PromptMessage{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: promptPrefix + text + promptSuffix},
	}, nil
}
