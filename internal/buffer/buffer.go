// Package buffer implements the per-conversation context buffer: an ordered
// message log with an optional rolling summary, bounded by a token budget
// that triggers summarization of older messages.
package buffer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/obitus-ai/contextd/internal/metrics"
	"github.com/obitus-ai/contextd/internal/token"
	"github.com/obitus-ai/contextd/pkg/message"
)

const (
	// summarizeFloor is the message count below which summarization is
	// never attempted, regardless of token count.
	summarizeFloor = 20

	// retainRecent is the number of most-recent messages kept verbatim
	// after a summarization pass.
	retainRecent = 10

	// DefaultMaxTokens is the summarization trigger budget used when the
	// configured value is zero.
	DefaultMaxTokens = 4000

	// DefaultSummarizeTimeout bounds a single summarizer call.
	DefaultSummarizeTimeout = 30 * time.Second
)

// Options configures a Buffer. Zero values fall back to defaults.
type Options struct {
	// MaxTokens is the token budget that triggers summarization. It is a
	// trigger heuristic, not an enforced ceiling.
	MaxTokens int

	// SummarizeTimeout bounds the summarizer call; on expiry the buffer
	// degrades to the placeholder digest.
	SummarizeTimeout time.Duration

	// Counter estimates token counts. Required in practice; a nil value
	// falls back to the length heuristic.
	Counter token.Counter

	// Summarizer produces digests of older messages. A nil summarizer
	// makes every summarization take the placeholder path.
	Summarizer Summarizer

	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Now is injectable for testing. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) defaults() {
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.SummarizeTimeout <= 0 {
		o.SummarizeTimeout = DefaultSummarizeTimeout
	}
	if o.Counter == nil {
		o.Counter = token.NewAdapter(nil)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Buffer holds one conversation's cached context. All mutable state is
// guarded by the buffer's own mutex; the registry never touches it directly.
type Buffer struct {
	id string

	mu          sync.Mutex
	messages    []message.Message
	summary     string
	lastUpdated time.Time

	maxTokens        int
	summarizeTimeout time.Duration
	counter          token.Counter
	summarizer       Summarizer
	logger           *slog.Logger
	metrics          *metrics.Metrics
	now              func() time.Time
}

// New creates an empty buffer for the given conversation.
func New(conversationID string, opts Options) *Buffer {
	opts.defaults()
	return &Buffer{
		id:               conversationID,
		lastUpdated:      opts.Now(),
		maxTokens:        opts.MaxTokens,
		summarizeTimeout: opts.SummarizeTimeout,
		counter:          opts.Counter,
		summarizer:       opts.Summarizer,
		logger:           opts.Logger,
		metrics:          opts.Metrics,
		now:              opts.Now,
	}
}

// ID returns the conversation identifier this buffer is keyed by.
func (b *Buffer) ID() string {
	return b.id
}

// Append adds a message with the current timestamp and bumps last-updated.
// It always succeeds: a pure in-memory append under the buffer's lock.
func (b *Buffer) Append(content, senderID string, senderType message.SenderType, metadata map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.messages = append(b.messages, message.Message{
		Content:    content,
		SenderID:   senderID,
		SenderName: message.DisplayName(senderType, senderID, nil),
		SenderType: senderType,
		Timestamp:  now,
		Metadata:   metadata,
	})
	b.lastUpdated = now
	b.metrics.RecordMessage()
}

// MessageCount returns the number of messages in the verbatim tail.
func (b *Buffer) MessageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

// TokenCount returns the estimated token count over the held messages.
func (b *Buffer) TokenCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return token.CountMessages(b.counter, b.messages)
}

// HasSummary reports whether a summarization pass has ever completed.
// Once set, the summary is never un-set.
func (b *Buffer) HasSummary() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary != ""
}

// Summary returns the current rolling summary, or "" if none exists yet.
func (b *Buffer) Summary() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.summary
}

// LastUpdated returns the time of the most recent append or restore.
// The eviction sweep reads this to find idle buffers.
func (b *Buffer) LastUpdated() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUpdated
}

// MaxTokens returns the configured summarization-trigger budget.
func (b *Buffer) MaxTokens() int {
	return b.maxTokens
}

// Info is a point-in-time snapshot of a buffer's state.
type Info struct {
	ConversationID string    `json:"conversation_id"`
	MessageCount   int       `json:"message_count"`
	HasSummary     bool      `json:"has_summary"`
	LastUpdated    time.Time `json:"last_updated"`
	TokenCount     int       `json:"token_count"`
	MaxTokens      int       `json:"max_tokens"`
}

// Info returns a consistent snapshot of the buffer's state.
func (b *Buffer) Info() Info {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Info{
		ConversationID: b.id,
		MessageCount:   len(b.messages),
		HasSummary:     b.summary != "",
		LastUpdated:    b.lastUpdated,
		TokenCount:     token.CountMessages(b.counter, b.messages),
		MaxTokens:      b.maxTokens,
	}
}
