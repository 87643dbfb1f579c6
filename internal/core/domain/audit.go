package domain

import "time"

// AuthEventKind classifies an entry in the authentication audit trail.
type AuthEventKind string

const (
	AuthEventRegistered     AuthEventKind = "registered"
	AuthEventLoginSuccess   AuthEventKind = "login_succeeded"
	AuthEventLoginFailure   AuthEventKind = "login_failed"
	AuthEventLoginThrottled AuthEventKind = "login_throttled"
)

// AuthEvent records the outcome of a registration or login attempt.
type AuthEvent struct {
	Kind       AuthEventKind
	Username   string
	OccurredAt time.Time
}
