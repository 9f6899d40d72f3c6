package models

import (
	"errors"
	"fmt"
)

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single message in a conversation.
// Messages are session-scoped: they live in the chat widget on the client and
// are only held in memory here for the duration of one request.
type Message struct {
	Role    Role   `json:"role"`    // "user", "assistant" or "system"
	Content string `json:"content"` // The text content of the message
}

var ErrInvalidRole = errors.New("invalid role: must be 'user', 'assistant', or 'system'")

// Validate checks that the message has a recognized role and non-empty content.
func (m Message) Validate() error {
	switch m.Role {
	case RoleUser, RoleAssistant, RoleSystem:
	default:
		return fmt.Errorf("%w (got %q)", ErrInvalidRole, m.Role)
	}
	if m.Content == "" {
		return errors.New("message content must be a non-empty string")
	}
	return nil
}

// Truncated returns a copy of the message with its content capped at maxLen
// characters. Content at or below the cap is returned unchanged.
func (m Message) Truncated(maxLen int) Message {
	if maxLen > 0 && len(m.Content) > maxLen {
		if runes := []rune(m.Content); len(runes) > maxLen {
			m.Content = string(runes[:maxLen])
		}
	}
	return m
}

// SanitizeHistory validates every message in a conversation history and
// truncates each message's content to maxLen. It rejects histories longer than
// maxMessages so an oversized conversation never reaches a remote provider.
func SanitizeHistory(history []Message, maxMessages, maxLen int) ([]Message, error) {
	if len(history) == 0 {
		return nil, errors.New("messages array is required and must not be empty")
	}
	if maxMessages > 0 && len(history) > maxMessages {
		return nil, fmt.Errorf("too many messages: maximum %d allowed", maxMessages)
	}

	sanitized := make([]Message, 0, len(history))
	for i, msg := range history {
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid message at index %d: %w", i, err)
		}
		sanitized = append(sanitized, msg.Truncated(maxLen))
	}
	return sanitized, nil
}

// LastUserMessage returns the most recent user message in the history, or
// false when the history contains none.
func LastUserMessage(history []Message) (Message, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			return history[i], true
		}
	}
	return Message{}, false
}
