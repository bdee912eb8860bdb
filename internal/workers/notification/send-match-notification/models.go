// internal/workers/notification/send-match-notification/models.go
package sendmatchnotification

import "printmatch-workers/internal/matching"

type Input struct {
	RecipientID   string           `json:"recipientId"`
	RecipientType string           `json:"recipientType"` // "designer" or "producer"
	RunID         string           `json:"runId,omitempty"`
	ProjectID     string           `json:"projectId,omitempty"`
	Urgent        bool             `json:"urgent,omitempty"`
	Matches       []matching.Match `json:"matches"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled"
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)
