// Package message defines the conversation turn model shared by the
// context-window manager and the model clients.
package message

import (
	"time"
)

// Role identifies the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"

	// RoleSummary marks a synthetic turn that stands in for a batch of
	// compacted older turns. At most one summary turn exists in active
	// history at a time.
	RoleSummary Role = "summary"
)

// Turn is one message in a conversation. Turns are immutable once created;
// Order is assigned by the owning context window at append time and gives a
// total ordering over the conversation.
type Turn struct {
	Role    Role
	Content string
	Order   int
	Created time.Time
}

// NewTurn creates a turn with the given order index.
func NewTurn(role Role, content string, order int) Turn {
	return Turn{
		Role:    role,
		Content: content,
		Order:   order,
		Created: time.Now(),
	}
}

// IsSummary reports whether the turn is a compaction summary marker.
func (t Turn) IsSummary() bool {
	return t.Role == RoleSummary
}
