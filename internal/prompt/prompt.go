package prompt

import (
	"fmt"
	"strings"
)

// explainTemplate steers the model toward strictly alternating caption
// and image output so the assembler can pair them back up. The phrasing
// matters: asking for "a caption, then its illustration" keeps the
// interleaving stable across models.
const explainTemplate = `You are an educational illustrator. Create a clear, fun explainer about: %s

Produce exactly %d short sections. For each section, first write one
concise caption (1-2 sentences, plain language, a touch of markdown
emphasis is fine), then generate one illustration for that caption in
the style of %s. Alternate strictly: caption, image, caption, image.
Do not add an introduction, outro, headings, or numbering.`

// Explain builds the generation prompt for a topic.
func Explain(topic, style string, slideTarget int) string {
	topic = strings.TrimSpace(topic)
	if style = strings.TrimSpace(style); style == "" {
		style = "fun, doodle-style illustrations"
	}
	if slideTarget < 1 {
		slideTarget = 1
	}
	return fmt.Sprintf(explainTemplate, topic, slideTarget, style)
}
