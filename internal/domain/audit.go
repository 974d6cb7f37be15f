package domain

import "time"

// Admin action kinds recorded in the activity log.
const (
	AdminActionApplicationApproved = "application_approved"
	AdminActionApplicationRejected = "application_rejected"
	AdminActionUserBlocked         = "user_blocked"
	AdminActionUserUnblocked       = "user_unblocked"
)

// AdminActivityLog is a write-once audit record of an administrative action.
type AdminActivityLog struct {
	ID         int64     `json:"id"`
	AdminID    int32     `json:"admin_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	TargetName string    `json:"target_name"`
	Result     string    `json:"result"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
