package message

import "strings"

// DisplayName resolves the label rendered in front of a message.
//
// Agents are always labelled by their sender ID (the agent type, e.g.
// "grief_support"). For everyone else the resolution is priority-ordered:
// first+last name, then username, then the raw sender ID, then a generic
// role label.
func DisplayName(senderType SenderType, senderID string, profile *Profile) string {
	if senderType == SenderAgent {
		if senderID != "" {
			return senderID
		}
		return "AGENT"
	}

	if profile != nil {
		full := strings.TrimSpace(profile.FirstName + " " + profile.LastName)
		if full != "" {
			return full
		}
		if profile.Username != "" {
			return profile.Username
		}
	}

	if senderID != "" {
		return senderID
	}
	if senderType == SenderSystem {
		return "SYSTEM"
	}
	return "USER"
}
