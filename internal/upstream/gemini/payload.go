package gemini

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// BuildGeneratePayload shapes the upstream request body for a prompt.
// Response modalities are pinned to TEXT+IMAGE because the whole point
// of the explain stream is interleaved captions and pictures.
func BuildGeneratePayload(prompt string) []byte {
	body := []byte(`{}`)
	body, _ = sjson.SetBytes(body, "contents.0.role", "user")
	body, _ = sjson.SetBytes(body, "contents.0.parts.0.text", prompt)
	body, _ = sjson.SetBytes(body, "generationConfig.responseModalities", []string{"TEXT", "IMAGE"})
	return body
}

// PromptFromPayload extracts the first user text part, for logging.
func PromptFromPayload(body []byte) string {
	return gjson.GetBytes(body, "contents.0.parts.0.text").String()
}
