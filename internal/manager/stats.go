package manager

import "time"

const (
	// maxHealthyBuffers is the buffer count above which health degrades
	// to a warning. Early-warning signal only, nothing is enforced.
	maxHealthyBuffers = 1000

	// tokenPressureRatio flags average token usage approaching the budget.
	tokenPressureRatio = 0.9
)

// Stats is an aggregate view across all live buffers.
type Stats struct {
	ActiveBuffers     int           `json:"active_buffers"`
	TotalMessages     int           `json:"total_messages"`
	SummarizedBuffers int           `json:"summarized_buffers"`
	AvgTokens         float64       `json:"avg_tokens"`
	MinTokens         int           `json:"min_tokens"`
	MaxTokens         int           `json:"max_tokens"`
	ConfiguredMax     int           `json:"configured_max_tokens"`
	CleanupInterval   time.Duration `json:"cleanup_interval_ns"`
}

// Stats aggregates message and token counts across the registry. Buffer
// queries happen outside the registry lock.
func (m *Manager) Stats() Stats {
	stats := Stats{
		ConfiguredMax:   m.cfg.MaxTokens,
		CleanupInterval: m.cfg.CleanupInterval,
	}

	var totalTokens int
	for _, buf := range m.snapshot() {
		info := buf.Info()
		stats.ActiveBuffers++
		stats.TotalMessages += info.MessageCount
		if info.HasSummary {
			stats.SummarizedBuffers++
		}
		totalTokens += info.TokenCount
		if stats.ActiveBuffers == 1 || info.TokenCount < stats.MinTokens {
			stats.MinTokens = info.TokenCount
		}
		if info.TokenCount > stats.MaxTokens {
			stats.MaxTokens = info.TokenCount
		}
	}
	if stats.ActiveBuffers > 0 {
		stats.AvgTokens = float64(totalTokens) / float64(stats.ActiveBuffers)
	}
	return stats
}

// Health is the health_check report: "healthy" or "warning" plus the list
// of detected issues.
type Health struct {
	Status        string   `json:"status"`
	Issues        []string `json:"issues,omitempty"`
	ActiveBuffers int      `json:"active_buffers"`
	AvgTokens     float64  `json:"avg_tokens"`
}

// HealthCheck flags resource pressure: too many live buffers, or average
// token usage approaching the configured budget.
func (m *Manager) HealthCheck() Health {
	stats := m.Stats()
	h := Health{
		Status:        "healthy",
		ActiveBuffers: stats.ActiveBuffers,
		AvgTokens:     stats.AvgTokens,
	}

	if stats.ActiveBuffers > maxHealthyBuffers {
		h.Issues = append(h.Issues, "too many active buffers")
	}
	if stats.AvgTokens >= tokenPressureRatio*float64(m.cfg.MaxTokens) {
		h.Issues = append(h.Issues, "average token count approaching max_tokens")
	}
	if len(h.Issues) > 0 {
		h.Status = "warning"
	}
	return h
}
