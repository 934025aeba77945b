// Package manager owns the registry of live conversation buffers: lazy
// creation, resume/clear lifecycle, aggregate statistics, and the idle
// sweep that evicts abandoned conversations.
package manager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/internal/metrics"
	"github.com/obitus-ai/contextd/internal/token"
	"github.com/obitus-ai/contextd/pkg/message"
)

const (
	// DefaultCleanupInterval is how often the background sweep runs.
	DefaultCleanupInterval = 30 * time.Minute

	// DefaultIdleTTL is the age past which an untouched buffer is evicted.
	DefaultIdleTTL = 6 * time.Hour
)

// Config holds the manager's tuning knobs. Zero values fall back to
// defaults.
type Config struct {
	// MaxTokens is the default summarization-trigger budget propagated to
	// new buffers.
	MaxTokens int

	// CleanupInterval is the period of the background eviction sweep.
	CleanupInterval time.Duration

	// IdleTTL is the idle age past which a buffer is evicted.
	IdleTTL time.Duration

	// SummarizeTimeout bounds each summarizer call.
	SummarizeTimeout time.Duration
}

func (c *Config) defaults() {
	if c.MaxTokens <= 0 {
		c.MaxTokens = buffer.DefaultMaxTokens
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.IdleTTL <= 0 {
		c.IdleTTL = DefaultIdleTTL
	}
	if c.SummarizeTimeout <= 0 {
		c.SummarizeTimeout = buffer.DefaultSummarizeTimeout
	}
}

// Manager is the process-wide registry of conversation buffers.
//
// Locking is two-tier: the manager's RWMutex guards only the registry map
// (insert/remove/iterate); each buffer guards its own state. The registry
// lock is released as soon as a buffer reference is obtained, so slow
// summarization in one conversation never blocks the others.
type Manager struct {
	mu      sync.RWMutex
	buffers map[string]*buffer.Buffer

	cfg        Config
	counter    token.Counter
	summarizer buffer.Summarizer
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// now is injectable for testing. Defaults to time.Now.
	now func() time.Time
}

// New creates a Manager. counter may be nil (length heuristic); summarizer
// may be nil (summarization degrades to placeholders).
func New(cfg Config, counter token.Counter, summarizer buffer.Summarizer, logger *slog.Logger, m *metrics.Metrics) *Manager {
	cfg.defaults()
	if counter == nil {
		counter = token.NewAdapter(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		buffers:    make(map[string]*buffer.Buffer),
		cfg:        cfg,
		counter:    counter,
		summarizer: summarizer,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

func (m *Manager) bufferOptions() buffer.Options {
	return buffer.Options{
		MaxTokens:        m.cfg.MaxTokens,
		SummarizeTimeout: m.cfg.SummarizeTimeout,
		Counter:          m.counter,
		Summarizer:       m.summarizer,
		Logger:           m.logger,
		Metrics:          m.metrics,
		Now:              m.now,
	}
}

// GetOrCreate returns the buffer for the conversation, creating it if
// absent (double-checked under the registry lock, so exactly one buffer
// exists per id). A non-nil loader replays persisted history into a newly
// created buffer; the registry lock is not held during that I/O.
func (m *Manager) GetOrCreate(ctx context.Context, conversationID string, loader buffer.Loader) *buffer.Buffer {
	m.mu.RLock()
	buf := m.buffers[conversationID]
	m.mu.RUnlock()
	if buf != nil {
		return buf
	}

	m.mu.Lock()
	buf = m.buffers[conversationID]
	created := false
	if buf == nil {
		buf = buffer.New(conversationID, m.bufferOptions())
		m.buffers[conversationID] = buf
		created = true
	}
	m.mu.Unlock()

	if created && loader != nil {
		if err := buf.LoadFromStore(ctx, loader); err != nil {
			// Degrade to an empty buffer; replay failure is never fatal.
			m.logger.Warn("manager: history replay failed",
				"conversation", conversationID,
				"error", err,
			)
		}
	}
	return buf
}

// AddMessage appends a message to the conversation, creating the buffer on
// first use.
func (m *Manager) AddMessage(ctx context.Context, conversationID, content, senderID string, senderType message.SenderType, metadata map[string]any) {
	m.GetOrCreate(ctx, conversationID, nil).Append(content, senderID, senderType, metadata)
}

// Context returns the formatted context for the conversation, running the
// summarization trigger first. The buffer is created if absent.
func (m *Manager) Context(ctx context.Context, conversationID string) string {
	m.metrics.RecordContextRequest()
	return m.GetOrCreate(ctx, conversationID, nil).FormattedContext(ctx, true)
}

// ResumeConversation discards any live buffer for the conversation, builds
// a fresh one from the loader, and returns its formatted context. Used
// after process restart or an explicit reload.
//
// The replay runs before the new buffer is published, and the swap happens
// under a single registry lock: a concurrent writer cannot slip a
// loader-less buffer in under the same id mid-resume. Whatever that writer
// appended to the old buffer is discarded with it.
func (m *Manager) ResumeConversation(ctx context.Context, conversationID string, loader buffer.Loader) string {
	buf := buffer.New(conversationID, m.bufferOptions())
	if loader != nil {
		if err := buf.LoadFromStore(ctx, loader); err != nil {
			m.logger.Warn("manager: history replay failed",
				"conversation", conversationID,
				"error", err,
			)
		}
	}

	m.mu.Lock()
	m.buffers[conversationID] = buf
	m.mu.Unlock()

	m.metrics.RecordContextRequest()
	return buf.FormattedContext(ctx, true)
}

// UpdateContext behaves as ResumeConversation when forceReload is set,
// otherwise as Context.
func (m *Manager) UpdateContext(ctx context.Context, conversationID string, loader buffer.Loader, forceReload bool) string {
	if forceReload {
		return m.ResumeConversation(ctx, conversationID, loader)
	}
	return m.Context(ctx, conversationID)
}

// ClearConversation removes the buffer immediately. Used on conversation
// close or delete; a no-op for unknown ids.
func (m *Manager) ClearConversation(conversationID string) {
	m.mu.Lock()
	delete(m.buffers, conversationID)
	m.mu.Unlock()
}

// ForceSummarize runs the summarization procedure unconditionally and
// reports whether a buffer existed to act on.
func (m *Manager) ForceSummarize(ctx context.Context, conversationID string) bool {
	m.mu.RLock()
	buf := m.buffers[conversationID]
	m.mu.RUnlock()
	if buf == nil {
		return false
	}
	buf.ForceSummarize(ctx)
	return true
}

// BufferInfo returns a snapshot of the buffer's state, or false if no
// buffer exists for the conversation.
func (m *Manager) BufferInfo(conversationID string) (buffer.Info, bool) {
	m.mu.RLock()
	buf := m.buffers[conversationID]
	m.mu.RUnlock()
	if buf == nil {
		return buffer.Info{}, false
	}
	return buf.Info(), true
}

// ExportConversation serializes a buffer for transport, or returns false
// if no buffer exists.
func (m *Manager) ExportConversation(conversationID string, includeMetadata bool) (buffer.Export, bool) {
	m.mu.RLock()
	buf := m.buffers[conversationID]
	m.mu.RUnlock()
	if buf == nil {
		return buffer.Export{}, false
	}
	return buf.Export(includeMetadata), true
}

// ImportConversation reconstructs a buffer from an exported record,
// replacing any existing buffer for the id. Returns false on an unusable
// record (empty id or no content to restore).
func (m *Manager) ImportConversation(conversationID string, data buffer.Export) bool {
	if conversationID == "" {
		return false
	}
	if len(data.Messages) == 0 && data.Summary == "" {
		return false
	}

	buf := buffer.New(conversationID, m.bufferOptions())
	buf.Restore(data.Messages, data.Summary, data.LastUpdated)

	m.mu.Lock()
	m.buffers[conversationID] = buf
	m.mu.Unlock()
	return true
}

// Len returns the number of live buffers.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buffers)
}

// snapshot returns the live buffers without holding the registry lock
// while callers query them.
func (m *Manager) snapshot() []*buffer.Buffer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bufs := make([]*buffer.Buffer, 0, len(m.buffers))
	for _, b := range m.buffers {
		bufs = append(bufs, b)
	}
	return bufs
}
