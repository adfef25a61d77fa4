package entities

import "time"

type ActivityKind string

const (
	ActivityRegister       ActivityKind = "register"
	ActivityLogin          ActivityKind = "login"
	ActivityLogout         ActivityKind = "logout"
	ActivityProfileUpdate  ActivityKind = "profile_update"
	ActivityPasswordChange ActivityKind = "password_change"
)

// ActivityEvent is one structured user action, counted by the active-user metric.
type ActivityEvent struct {
	EventID    string
	UserID     string
	Kind       ActivityKind
	OccurredAt time.Time
}
