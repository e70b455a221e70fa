package offline

import (
	"context"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
)

// Queue durably buffers clock actions on the trainer's device.
type Queue interface {
	// Enqueue stores a new action and returns its generated id
	Enqueue(ctx context.Context, actionType shift.ActionType, clientTimestamp string) (string, error)

	// ListAll returns every buffered action in no particular order
	ListAll(ctx context.Context) ([]QueuedAction, error)

	// Remove deletes one action. Removing an unknown id is a no-op.
	Remove(ctx context.Context, id string) error
}
