package buffer

import (
	"time"

	"github.com/obitus-ai/contextd/internal/token"
	"github.com/obitus-ai/contextd/pkg/message"
)

// Export is the transportable serialization of a buffer's state.
type Export struct {
	ConversationID   string            `json:"conversation_id"`
	MessageCount     int               `json:"message_count"`
	FormattedContext string            `json:"formatted_context"`
	Messages         []message.Message `json:"messages"`
	Summary          string            `json:"summary,omitempty"`
	LastUpdated      time.Time         `json:"last_updated"`
	TokenCount       int               `json:"token_count"`
}

// Export serializes the buffer for transport. Rendering here never triggers
// summarization: the export reflects the state as-is. When includeMetadata
// is false, per-message metadata is stripped.
func (b *Buffer) Export(includeMetadata bool) Export {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := make([]message.Message, len(b.messages))
	copy(msgs, b.messages)
	if !includeMetadata {
		for i := range msgs {
			msgs[i].Metadata = nil
		}
	}

	return Export{
		ConversationID:   b.id,
		MessageCount:     len(msgs),
		FormattedContext: b.renderLocked(),
		Messages:         msgs,
		Summary:          b.summary,
		LastUpdated:      b.lastUpdated,
		TokenCount:       token.CountMessages(b.counter, b.messages),
	}
}

// Restore replaces the buffer's messages, summary, and last-updated stamp
// from an exported record. Used by the import path; any previous state for
// this buffer is discarded.
func (b *Buffer) Restore(msgs []message.Message, summary string, lastUpdated time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	restored := make([]message.Message, len(msgs))
	copy(restored, msgs)
	b.messages = restored
	b.summary = summary
	if lastUpdated.IsZero() {
		lastUpdated = b.now()
	}
	b.lastUpdated = lastUpdated
}
