package manager

import "github.com/obitus-ai/contextd/internal/buffer"

// Sweep removes buffers whose last update is older than the idle TTL and
// returns the number evicted. Intended to be driven by the cron scheduler.
//
// LastUpdated reads happen outside the registry lock: they take the buffer
// mutex, and a buffer mid-summarization holds that mutex for up to the
// summarizer timeout. Under the registry lock the only check is pointer
// identity, so a conversation resumed or imported under the same id since
// the scan keeps its fresh buffer and Sweep never waits on a buffer-local
// operation while the whole registry is locked.
func (m *Manager) Sweep() int {
	now := m.now()

	type stale struct {
		id  string
		buf *buffer.Buffer
	}
	var expired []stale
	for _, buf := range m.snapshot() {
		if now.Sub(buf.LastUpdated()) > m.cfg.IdleTTL {
			expired = append(expired, stale{id: buf.ID(), buf: buf})
		}
	}
	if len(expired) == 0 {
		return 0
	}

	evicted := 0
	m.mu.Lock()
	for _, e := range expired {
		if m.buffers[e.id] == e.buf {
			delete(m.buffers, e.id)
			evicted++
		}
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.metrics.RecordEvictions(evicted)
		m.logger.Info("manager: evicted idle buffers",
			"count", evicted,
			"idle_ttl", m.cfg.IdleTTL,
		)
	}
	return evicted
}
