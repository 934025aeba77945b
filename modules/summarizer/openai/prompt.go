package openai

import (
	"strings"
	"unicode/utf8"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/pkg/message"
)

const systemPrompt = "You condense conversation history for a support platform. " +
	"Reply with a single short paragraph that keeps key facts, names, dates, " +
	"decisions, and outstanding requests."

// maxContentChars bounds each message's contribution to the prompt so a
// pathological message cannot blow the summarization request itself.
const maxContentChars = 500

// buildPrompt renders one line per message: timestamp, sender, role, content.
func buildPrompt(msgs []message.Message) string {
	var b strings.Builder
	b.WriteString("Summarize this conversation:\n\n")
	for i := range msgs {
		m := &msgs[i]
		b.WriteString("[")
		b.WriteString(buffer.FormatTimestamp(m.Timestamp))
		b.WriteString("] ")
		b.WriteString(m.SenderName)
		b.WriteString(" (")
		b.WriteString(string(m.SenderType))
		b.WriteString("): ")
		b.WriteString(truncate(m.Content, maxContentChars))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate cuts s at a rune boundary at or before limit bytes, so a
// multi-byte character straddling the limit never leaves invalid UTF-8
// in the prompt.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
