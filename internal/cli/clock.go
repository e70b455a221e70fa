package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/offline"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/shift"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/shiftapi"
	"github.com/cmlabs-hris/academy-shift-go/internal/service/dispatcher"
	"github.com/spf13/cobra"
)

type ClockOptions struct {
	*RootOptions
	At      string
	Offline bool
}

// clockResult is what clock-in and clock-out report
type clockResult struct {
	Type     shift.ActionType    `json:"type"`
	Queued   bool                `json:"queued"`
	QueueID  string              `json:"queueId,omitempty"`
	Result   *shift.ActionResult `json:"result,omitempty"`
	Reason   string              `json:"reason,omitempty"`
	Recorded string              `json:"clientTimestamp"`
}

// NewClockCommand creates clock-in or clock-out.
func NewClockCommand(rootOpts *RootOptions, name string) *cobra.Command {
	opts := &ClockOptions{RootOptions: rootOpts}
	actionType := shift.ActionClockIn
	if name == "clock-out" {
		actionType = shift.ActionClockOut
	}

	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Record a %s action", actionType),
		Long: fmt.Sprintf(`Record a %s action now (or at --at).

The action is sent straight to the server. If earlier actions are still
queued it joins them and the whole queue is flushed in clock order. When the
server cannot be reached or the session has expired, it is kept in the
offline queue for a later sync.`, actionType),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts.RootOptions)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := clock(cmd.Context(), rt, actionType, opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) error {
				switch {
				case result.Queued:
					printf(w, "%s queued offline (%s): %s\n", result.Type, result.QueueID, result.Reason)
				case result.Result == nil:
					printf(w, "%s dropped: %s\n", result.Type, result.Reason)
				case result.Result.Status == shift.StatusOK:
					printf(w, "%s recorded\n", result.Type)
				default:
					printf(w, "%s rejected: %s\n", result.Type, result.Result.Error)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "client timestamp (RFC3339), default now")
	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "queue without contacting the server")

	return cmd
}

func clock(ctx context.Context, rt *runtime, actionType shift.ActionType, opts *ClockOptions) (clockResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ts := opts.At
	if ts == "" {
		ts = time.Now().Format(time.RFC3339Nano)
	}
	result := clockResult{Type: actionType, Recorded: ts}

	if opts.Offline {
		result.Reason = "offline requested"
		return enqueue(ctx, rt, result)
	}

	pending, err := rt.queue.Count(ctx)
	if err != nil {
		return result, err
	}
	if pending > 0 {
		// Earlier actions are still queued; send everything as one sorted batch
		return syncBehindQueue(ctx, rt, result)
	}

	results, err := rt.client.SubmitBatch(ctx, []shift.ActionRequest{{Type: actionType, ClientTimestamp: ts}})
	var transportErr *shiftapi.TransportError
	switch {
	case err == nil && len(results) > 0:
		result.Result = &results[0]
		return result, nil
	case errors.Is(err, offline.ErrAuthRequired):
		result.Reason = "session expired"
	case errors.As(err, &transportErr):
		result.Reason = "server unreachable"
	case err != nil:
		return result, err
	default:
		return result, fmt.Errorf("empty response from sync endpoint")
	}
	slog.Debug("Direct submission failed, queueing", "type", actionType, "reason", result.Reason)

	return enqueue(ctx, rt, result)
}

func enqueue(ctx context.Context, rt *runtime, result clockResult) (clockResult, error) {
	id, err := rt.queue.Enqueue(ctx, result.Type, result.Recorded)
	if err != nil {
		return result, err
	}
	result.Queued = true
	result.QueueID = id
	return result, nil
}

// syncBehindQueue queues the action and flushes the queue so the server sees
// it after the earlier actions it may depend on.
func syncBehindQueue(ctx context.Context, rt *runtime, result clockResult) (clockResult, error) {
	result, err := enqueue(ctx, rt, result)
	if err != nil {
		return result, err
	}

	out, err := rt.dispatcher.Sync(ctx)
	if err != nil {
		slog.Debug("Queue flush failed", "error", err)
		result.Reason = "server unreachable"
		return result, nil
	}

	switch out.Kind {
	case dispatcher.OutcomeAuthNeeded:
		result.Reason = "session expired"
		return result, nil
	case dispatcher.OutcomeDeferred:
		result.Reason = fmt.Sprintf("server answered %d", out.Status)
		return result, nil
	}

	for i, id := range out.Submitted {
		if id == result.QueueID && i < len(out.Results) {
			result.Queued = false
			result.Result = &out.Results[i]
			return result, nil
		}
	}
	if slices.Contains(out.Expired, result.QueueID) {
		result.Queued = false
		result.Reason = "expired before it could be sent"
		return result, nil
	}
	result.Reason = "waiting behind earlier actions"
	return result, nil
}
