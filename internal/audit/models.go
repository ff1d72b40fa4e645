package audit

import "time"

// Action names a recorded account event.
type Action string

const (
	ActionAccountRegistered  Action = "account.registered"
	ActionAccountApproved    Action = "account.approved"
	ActionAccountDeactivated Action = "account.deactivated"
	ActionProviderLinked     Action = "account.provider_linked"
	ActionLoginSucceeded     Action = "login.succeeded"
	ActionTokenRefreshed     Action = "token.refreshed"
)

// Event is emitted from domain logic to capture key account actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    Action    `json:"action"`
	// Detail carries a short free-form fact, e.g. the provider that was
	// linked or the role that registered. Never put credentials here.
	Detail string `json:"detail,omitempty"`
}
