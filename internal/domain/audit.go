package domain

import "time"

// AuditAction identifies what kind of event was recorded.
type AuditAction string

const (
	AuditLogin       AuditAction = "login"
	AuditLoginFailed AuditAction = "login_failed"
	AuditLogout      AuditAction = "logout"
	AuditCreate      AuditAction = "create"
	AuditUpdate      AuditAction = "update"
	AuditDelete      AuditAction = "delete"
	AuditSystem      AuditAction = "system"
)

type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
)

type AuditLog struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	Status       AuditStatus `json:"status"`
	IPAddress    string      `json:"ip_address,omitempty"`
	UserAgent    string      `json:"user_agent,omitempty"`
	ResourceType string      `json:"resource_type,omitempty"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Detail       string      `json:"detail,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditFilter narrows audit listings. Zero values mean "no filter".
type AuditFilter struct {
	UserID string
	Action AuditAction
	Skip   int
	Limit  int
}
