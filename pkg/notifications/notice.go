package notifications

import (
	"time"
)

// Type represents the notice severity.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Action is the single call-to-action a notice may offer.
type Action struct {
	Label string `json:"label"`
}

// Notice is a transient, user-facing message. It stays visible until it is
// dismissed, replaced or its action is taken.
type Notice struct {
	ID        string    `json:"id"`
	Tag       string    `json:"tag,omitempty"` // groups notices for DismissTag
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Action    *Action   `json:"action,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasAction reports whether the notice offers an action.
func (n Notice) HasAction() bool {
	return n.Action != nil && n.Action.Label != ""
}
