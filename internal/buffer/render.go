package buffer

import (
	"context"
	"strings"
	"time"
)

const (
	historyHeader = "CONVERSATION HISTORY:"
	summaryHeader = "CONVERSATION SUMMARY:"
	recentHeader  = "RECENT CONVERSATION:"
	emptyHistory  = "CONVERSATION HISTORY:\nNo previous messages."
)

// FormattedContext builds the text block consumed by downstream LLM calls.
// When summarizeIfNeeded is true the summarization trigger runs first, so
// the rendered output reflects any fold that just happened.
func (b *Buffer) FormattedContext(ctx context.Context, summarizeIfNeeded bool) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if summarizeIfNeeded {
		b.maybeSummarizeLocked(ctx)
	}
	return b.renderLocked()
}

// renderLocked renders the current state. Caller must hold b.mu.
func (b *Buffer) renderLocked() string {
	if b.summary == "" && len(b.messages) == 0 {
		return emptyHistory
	}

	var sb strings.Builder
	if b.summary == "" {
		sb.WriteString(historyHeader)
	} else {
		sb.WriteString(summaryHeader)
		sb.WriteString("\n")
		sb.WriteString(b.summary)
		sb.WriteString("\n\n")
		sb.WriteString(recentHeader)
	}

	for i := range b.messages {
		sb.WriteString("\n[")
		sb.WriteString(b.messages[i].SenderName)
		sb.WriteString("]: ")
		sb.WriteString(b.messages[i].Content)
	}
	return sb.String()
}

// FormatTimestamp renders a timestamp for prompts and exports. Zero or
// absent timestamps render as a sentinel rather than failing.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "Unknown time"
	}
	return t.Format("2006-01-02 15:04")
}
