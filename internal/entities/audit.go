package entities

import "time"

type AuditEventType string

const (
	AuditEventRegister AuditEventType = "register"
	AuditEventLogin    AuditEventType = "login"
	AuditEventLogout   AuditEventType = "logout"
	AuditEventStepUp   AuditEventType = "step_up"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent records an authentication-related action for the security
// trail. Failed logins are recorded without a user ID when the email did
// not resolve to an account.
type AuditEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	EventType AuditEventType `gorm:"index;size:50" json:"event_type"`
	IPAddress string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent string         `gorm:"size:500" json:"user_agent,omitempty"`
	Status    AuditStatus    `gorm:"size:20" json:"status"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
