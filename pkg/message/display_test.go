package message_test

import (
	"testing"

	"github.com/obitus-ai/contextd/pkg/message"
)

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		senderType message.SenderType
		senderID   string
		profile    *message.Profile
		want       string
	}{
		{
			name:       "agent uses sender id",
			senderType: message.SenderAgent,
			senderID:   "grief_support",
			want:       "grief_support",
		},
		{
			name:       "agent ignores profile",
			senderType: message.SenderAgent,
			senderID:   "scheduler",
			profile:    &message.Profile{FirstName: "Should", LastName: "NotAppear"},
			want:       "scheduler",
		},
		{
			name:       "agent without id",
			senderType: message.SenderAgent,
			want:       "AGENT",
		},
		{
			name:       "full name wins",
			senderType: message.SenderUser,
			senderID:   "u-42",
			profile:    &message.Profile{FirstName: "Maria", LastName: "Santos", Username: "msantos"},
			want:       "Maria Santos",
		},
		{
			name:       "first name only",
			senderType: message.SenderUser,
			senderID:   "u-42",
			profile:    &message.Profile{FirstName: "Maria"},
			want:       "Maria",
		},
		{
			name:       "last name only",
			senderType: message.SenderUser,
			senderID:   "u-42",
			profile:    &message.Profile{LastName: "Santos"},
			want:       "Santos",
		},
		{
			name:       "username fallback",
			senderType: message.SenderUser,
			senderID:   "u-42",
			profile:    &message.Profile{Username: "msantos"},
			want:       "msantos",
		},
		{
			name:       "sender id fallback",
			senderType: message.SenderUser,
			senderID:   "u-42",
			profile:    &message.Profile{},
			want:       "u-42",
		},
		{
			name:       "nil profile uses sender id",
			senderType: message.SenderUser,
			senderID:   "u-42",
			want:       "u-42",
		},
		{
			name:       "anonymous user",
			senderType: message.SenderUser,
			want:       "USER",
		},
		{
			name:       "anonymous system",
			senderType: message.SenderSystem,
			want:       "SYSTEM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := message.DisplayName(tt.senderType, tt.senderID, tt.profile)
			if got != tt.want {
				t.Errorf("DisplayName(%q, %q, %+v) = %q, want %q",
					tt.senderType, tt.senderID, tt.profile, got, tt.want)
			}
		})
	}
}

func TestSenderTypeValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   message.SenderType
		want bool
	}{
		{message.SenderUser, true},
		{message.SenderAgent, true},
		{message.SenderSystem, true},
		{message.SenderType(""), false},
		{message.SenderType("bot"), false},
	}
	for _, tt := range tests {
		if got := tt.in.Valid(); got != tt.want {
			t.Errorf("SenderType(%q).Valid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProfileIsEmpty(t *testing.T) {
	t.Parallel()

	var nilProfile *message.Profile
	if !nilProfile.IsEmpty() {
		t.Error("nil profile: IsEmpty() = false, want true")
	}
	if !(&message.Profile{}).IsEmpty() {
		t.Error("zero profile: IsEmpty() = false, want true")
	}
	if (&message.Profile{Username: "m"}).IsEmpty() {
		t.Error("profile with username: IsEmpty() = true, want false")
	}
}
