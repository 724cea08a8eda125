package stats

import "github.com/tidwall/gjson"

// TokenUsage carries the token counters reported by the generative API
// in the final stream chunk.
type TokenUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Total prefers the reported total and falls back to the sum.
func (t *TokenUsage) Total() int64 {
	if t.TotalTokens > 0 {
		return t.TotalTokens
	}
	return t.PromptTokens + t.CompletionTokens
}

// ExtractTokenUsage pulls usageMetadata out of a raw stream chunk.
// Chunks wrapped in a "response" envelope are handled too. Returns nil
// when the chunk carries no usage information.
func ExtractTokenUsage(chunk []byte) *TokenUsage {
	if !gjson.ValidBytes(chunk) {
		return nil
	}
	root := gjson.ParseBytes(chunk)
	if inner := root.Get("response"); inner.Exists() && inner.IsObject() {
		root = inner
	}
	meta := root.Get("usageMetadata")
	if !meta.Exists() {
		return nil
	}
	return &TokenUsage{
		PromptTokens:     meta.Get("promptTokenCount").Int(),
		CompletionTokens: meta.Get("candidatesTokenCount").Int(),
		TotalTokens:      meta.Get("totalTokenCount").Int(),
	}
}
