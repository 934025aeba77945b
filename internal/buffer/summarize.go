package buffer

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/obitus-ai/contextd/internal/token"
	"github.com/obitus-ai/contextd/pkg/message"
)

var tracer = otel.Tracer("github.com/obitus-ai/contextd/internal/buffer")

// errNoSummarizer is the internal failure used when no summarizer is wired;
// it takes the same placeholder path as a summarizer error.
var errNoSummarizer = errors.New("buffer: no summarizer configured")

// Summarizer produces a short natural-language digest of a batch of older
// messages. Any error or timeout is tolerated by the buffer, never fatal.
type Summarizer interface {
	Summarize(ctx context.Context, messages []message.Message) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface.
type SummarizerFunc func(ctx context.Context, messages []message.Message) (string, error)

// Summarize implements Summarizer.
func (f SummarizerFunc) Summarize(ctx context.Context, messages []message.Message) (string, error) {
	return f(ctx, messages)
}

// ForceSummarize runs the summarization procedure unconditionally, bypassing
// the token/count trigger. A buffer with nothing to fold (at or below the
// retained tail size) is left unchanged.
func (b *Buffer) ForceSummarize(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summarizeLocked(ctx)
}

// maybeSummarizeLocked is the trigger heuristic: summarize when the token
// estimate exceeds the budget AND the message count exceeds the floor.
// This is deliberately not a hard ceiling — very long individual messages
// in the retained tail can keep the buffer over budget after folding.
func (b *Buffer) maybeSummarizeLocked(ctx context.Context) {
	if len(b.messages) <= summarizeFloor {
		return
	}
	if token.CountMessages(b.counter, b.messages) <= b.maxTokens {
		return
	}
	b.summarizeLocked(ctx)
}

// summarizeLocked folds all but the last retainRecent messages into the
// rolling summary. Caller must hold b.mu. The summarizer call runs inside
// the critical section: concurrent writers to this conversation serialize
// behind it, writers to other conversations are unaffected.
func (b *Buffer) summarizeLocked(ctx context.Context) {
	if len(b.messages) <= retainRecent {
		return
	}

	older := b.messages[:len(b.messages)-retainRecent]
	recent := b.messages[len(b.messages)-retainRecent:]

	digest, err := b.summarize(ctx, older)
	b.metrics.RecordSummarization(err)
	if err != nil {
		b.logger.Warn("buffer: summarization failed, using placeholder",
			"conversation", b.id,
			"folded", len(older),
			"error", err,
		)
		digest = fmt.Sprintf("[Summary of %d messages - details unavailable due to error]", len(older))
	}

	// The digest subsumes any prior summary: the summarizer sees the full
	// older set each pass, not an incremental delta.
	b.summary = digest
	tail := make([]message.Message, len(recent))
	copy(tail, recent)
	b.messages = tail
}

// summarize invokes the summarizer with a bounded timeout so a stuck call
// cannot block formatting indefinitely.
func (b *Buffer) summarize(ctx context.Context, older []message.Message) (string, error) {
	if b.summarizer == nil {
		return "", errNoSummarizer
	}

	ctx, cancel := context.WithTimeout(ctx, b.summarizeTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "buffer.summarize", trace.WithAttributes(
		attribute.String("conversation.id", b.id),
		attribute.Int("messages.folded", len(older)),
	))
	defer span.End()

	digest, err := b.summarizer.Summarize(ctx, older)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarization failed")
		return "", err
	}
	return digest, nil
}
