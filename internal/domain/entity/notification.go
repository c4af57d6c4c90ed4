// Package entity contains the core business objects of the project.
package entity

import "time"

// NotificationType classifies a notification for the rendering layer.
type NotificationType string

const (
	// NotificationApproval marks a pending purchase-approval notice.
	NotificationApproval NotificationType = "approval"
	// NotificationInfo marks an informational notice.
	NotificationInfo NotificationType = "info"
	// NotificationWarning marks a warning notice.
	NotificationWarning NotificationType = "warning"
	// NotificationError marks an error notice.
	NotificationError NotificationType = "error"
	// NotificationSuccess marks a success notice.
	NotificationSuccess NotificationType = "success"
)

// String returns the string representation of the NotificationType.
func (t NotificationType) String() string {
	return string(t)
}

// IsValid checks if the NotificationType is a valid value.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationApproval, NotificationInfo, NotificationWarning, NotificationError, NotificationSuccess:
		return true
	default:
		return false
	}
}

// Notification is an append-only notice produced by store mutations.
// There is no update or delete path for notifications in this core.
type Notification struct {
	ID        string           `json:"id"`                  // Generated identifier, prefix "n".
	Text      string           `json:"text"`                // Human-readable message.
	Type      NotificationType `json:"type"`                // Notification classification.
	Timestamp *time.Time       `json:"timestamp,omitempty"` // Optional creation time.
}
