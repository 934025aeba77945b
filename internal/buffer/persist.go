package buffer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/obitus-ai/contextd/pkg/message"
)

// PersistedMessage is one historical message replayed from the external
// store. Profile data, when present, drives display-name resolution.
type PersistedMessage struct {
	Content    string
	SenderKind message.SenderType // user or agent
	SenderID   string
	Profile    *message.Profile
	CreatedAt  time.Time
	Metadata   map[string]any
}

// Loader replays a conversation's historical messages in chronological
// order, used to (re)populate a buffer after a process restart.
type Loader interface {
	Load(ctx context.Context, conversationID string) ([]PersistedMessage, error)
}

// LoadFromStore replaces the buffer's contents with the persisted history
// and immediately runs the summarization check, so a long-lived conversation
// does not materialize a huge unsummarized buffer on resume.
//
// The loader call runs outside the buffer lock (it is I/O-bound); only the
// swap and the summarization check hold it.
func (b *Buffer) LoadFromStore(ctx context.Context, loader Loader) error {
	ctx, span := tracer.Start(ctx, "buffer.load")
	span.SetAttributes(attribute.String("conversation.id", b.id))
	defer span.End()

	records, err := loader.Load(ctx, b.id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("buffer: loading conversation %s: %w", b.id, err)
	}

	msgs := make([]message.Message, 0, len(records))
	for i := range records {
		rec := &records[i]
		senderType := rec.SenderKind
		if !senderType.Valid() {
			senderType = message.SenderUser
		}
		msgs = append(msgs, message.Message{
			Content:    rec.Content,
			SenderID:   rec.SenderID,
			SenderName: message.DisplayName(senderType, rec.SenderID, rec.Profile),
			SenderType: senderType,
			Timestamp:  rec.CreatedAt,
			Metadata:   rec.Metadata,
		})
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = msgs
	b.lastUpdated = b.now()
	b.maybeSummarizeLocked(ctx)

	b.logger.Debug("buffer: loaded conversation history",
		"conversation", b.id,
		"messages", len(msgs),
		"summarized", b.summary != "",
	)
	return nil
}
