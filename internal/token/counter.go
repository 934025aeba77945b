// Package token provides approximate token counting for context budgeting.
package token

import (
	"github.com/obitus-ai/contextd/pkg/message"
)

// Counter reports the approximate token count of a text. Implementations
// must never fail; callers treat the result as a budgeting heuristic, not
// an exact measure.
type Counter interface {
	Count(text string) int
}

// EncodeFunc is a pluggable tokenizer encoding. It may fail (e.g. a native
// encoder rejecting malformed input); the Adapter falls back to Approximate.
type EncodeFunc func(text string) (int, error)

// Approximate estimates tokens as len(text)/4 (integer division). Roughly
// four bytes per token holds for English prose and is deterministic.
func Approximate(text string) int {
	return len(text) / 4
}

// Adapter wraps an optional primary encoder behind the never-fails Counter
// contract. A nil encoder, an encoder error, or a negative result all fall
// back to Approximate.
type Adapter struct {
	encode EncodeFunc
}

// NewAdapter creates an Adapter around the given encoder. Pass nil to use
// the length heuristic only.
func NewAdapter(encode EncodeFunc) *Adapter {
	return &Adapter{encode: encode}
}

// Compile-time interface check.
var _ Counter = (*Adapter)(nil)

// Count implements Counter.
func (a *Adapter) Count(text string) int {
	if a.encode != nil {
		if n, err := a.encode(text); err == nil && n >= 0 {
			return n
		}
	}
	return Approximate(text)
}

// CountMessages returns the total count over the content of all messages.
func CountMessages(c Counter, msgs []message.Message) int {
	total := 0
	for i := range msgs {
		total += c.Count(msgs[i].Content)
	}
	return total
}
