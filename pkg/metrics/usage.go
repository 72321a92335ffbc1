package metrics

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenUsage captures LLM token counts used to satisfy a chat turn.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens,omitempty"`
	TotalTokens      int `json:"totalTokens"`
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Add merges another usage sample into the receiver.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

const fallbackEncoding = "cl100k_base"

// Estimator counts tokens locally so usage can be logged even when the
// completion API omits usage data.
type Estimator struct {
	encoding *tiktoken.Tiktoken
}

// NewEstimator builds an estimator for the given model, falling back to
// cl100k_base for models tiktoken does not know.
func NewEstimator(model string) *Estimator {
	enc, err := tiktoken.EncodingForModel(strings.TrimSpace(model))
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return &Estimator{}
		}
	}
	return &Estimator{encoding: enc}
}

// Count returns the token count of a text fragment, or 0 when no
// encoding is available.
func (e *Estimator) Count(text string) int {
	if e == nil || e.encoding == nil || text == "" {
		return 0
	}
	return len(e.encoding.Encode(text, nil, nil))
}
