package buffer_test

import (
	"context"
	"sync"
	"time"

	"github.com/obitus-ai/contextd/internal/buffer"
	"github.com/obitus-ai/contextd/pkg/message"
)

// fixedCounter reports a constant token count per message content.
type fixedCounter struct {
	perMessage int
}

func (c *fixedCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return c.perMessage
}

// mockSummarizer returns a canned digest or error and records its input.
type mockSummarizer struct {
	mu     sync.Mutex
	result string
	err    error
	delay  time.Duration
	calls  int
	lastIn []message.Message
}

func (s *mockSummarizer) Summarize(ctx context.Context, msgs []message.Message) (string, error) {
	s.mu.Lock()
	s.calls++
	s.lastIn = append([]message.Message(nil), msgs...)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.result, s.err
}

func (s *mockSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// mockLoader replays canned persisted messages.
type mockLoader struct {
	records []buffer.PersistedMessage
	err     error
}

func (l *mockLoader) Load(context.Context, string) ([]buffer.PersistedMessage, error) {
	return l.records, l.err
}

// appendN appends n one-line user messages to the buffer.
func appendN(b *buffer.Buffer, n int) {
	for i := 0; i < n; i++ {
		b.Append("message content", "user-1", message.SenderUser, nil)
	}
}
