package domain

import "time"

// ActivityAction names an auth lifecycle event worth recording.
type ActivityAction string

const (
	ActionSignup         ActivityAction = "signup"
	ActionLogin          ActivityAction = "login"
	ActionLogout         ActivityAction = "logout"
	ActionProfileUpdated ActivityAction = "profile_updated"
	ActionRoleAssigned   ActivityAction = "role_assigned"
	ActionUserRemoved    ActivityAction = "user_removed"
)

// Activity is an audit record of something a user did (or had done to them).
type Activity struct {
	ID         string         `json:"id"`
	Action     ActivityAction `json:"action"`
	ActorID    string         `json:"actorId"`
	TargetID   string         `json:"targetId,omitempty"`
	Role       Role           `json:"role,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
