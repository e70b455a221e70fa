package offline

import (
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
)

// QueuedAction is a clock action waiting for connectivity.
// QueuedAt is local bookkeeping for expiry and is never sent to the server.
type QueuedAction struct {
	ID              string
	Type            shift.ActionType
	ClientTimestamp string
	QueuedAt        int64 // epoch milliseconds
}

// Age returns how long the action has been queued as of now.
func (a QueuedAction) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-a.QueuedAt) * time.Millisecond
}

// Payload reduces the action to what the sync endpoint accepts.
func (a QueuedAction) Payload() shift.ActionRequest {
	return shift.ActionRequest{
		ID:              a.ID,
		Type:            a.Type,
		ClientTimestamp: a.ClientTimestamp,
	}
}

// NotificationType tags a broadcast sent to open views after a sync pass.
type NotificationType string

const (
	NotificationSynced     NotificationType = "shift-queue-synced"
	NotificationAuthNeeded NotificationType = "shift-queue-auth-needed"
)

// Notification tells open views which queued actions left the queue.
type Notification struct {
	Type         NotificationType `json:"type"`
	ProcessedIDs []string         `json:"processedIds"`
}
