// Package message defines the conversation message contract shared by the
// buffer, the persistence loader, and the summarizer.
package message

import "time"

// SenderType discriminates who authored a message.
type SenderType string

const (
	// SenderUser is a human participant.
	SenderUser SenderType = "user"
	// SenderAgent is an AI specialist agent.
	SenderAgent SenderType = "agent"
	// SenderSystem is a platform-generated message.
	SenderSystem SenderType = "system"
)

// Valid reports whether the sender type is one of the known variants.
func (s SenderType) Valid() bool {
	switch s {
	case SenderUser, SenderAgent, SenderSystem:
		return true
	}
	return false
}

// Message is a single conversation entry. Messages are immutable once
// appended to a buffer; insertion order is chronological order.
type Message struct {
	Content    string         `json:"content"`
	SenderID   string         `json:"sender_id"`
	SenderName string         `json:"sender_name"`
	SenderType SenderType     `json:"sender_type"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Profile carries the optional display fields attached to a persisted
// sender. All fields may be empty.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// IsEmpty reports whether the profile carries no usable display data.
func (p *Profile) IsEmpty() bool {
	return p == nil || (p.FirstName == "" && p.LastName == "" && p.Username == "")
}
