package offline

import "errors"

var (
	ErrAuthRequired     = errors.New("session expired, sign in again to sync queued actions")
	ErrServerRejected   = errors.New("sync endpoint rejected the batch")
	ErrQueueUnavailable = errors.New("offline queue is unavailable")
)
