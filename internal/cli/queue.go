package cli

import (
	"io"
	"text/tabwriter"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/offline"
	"github.com/spf13/cobra"
)

// NewQueueCommand creates the queue command group.
func NewQueueCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the offline queue",
	}
	cmd.AddCommand(newQueueListCommand(opts))
	return cmd
}

type queueEntry struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ClientTimestamp string `json:"clientTimestamp"`
	QueuedAt        int64  `json:"queuedAt"`
	Expired         bool   `json:"expired"`
}

func newQueueListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			actions, err := rt.queue.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			entries := queueEntries(actions, time.Now(), opts.config.FreshnessWindow)

			return writeOutput(cmd.OutOrStdout(), opts.Format, entries, func(w io.Writer) error {
				if len(entries) == 0 {
					printf(w, "queue is empty\n")
					return nil
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				printf(tw, "ID\tTYPE\tCLIENT TIME\tQUEUED\t\n")
				for _, e := range entries {
					state := time.UnixMilli(e.QueuedAt).Format(time.RFC3339)
					if e.Expired {
						state += " (expired)"
					}
					printf(tw, "%s\t%s\t%s\t%s\t\n", e.ID, e.Type, e.ClientTimestamp, state)
				}
				return tw.Flush()
			})
		},
	}
}

func queueEntries(actions []offline.QueuedAction, now time.Time, window time.Duration) []queueEntry {
	entries := make([]queueEntry, 0, len(actions))
	for _, a := range actions {
		entries = append(entries, queueEntry{
			ID:              a.ID,
			Type:            string(a.Type),
			ClientTimestamp: a.ClientTimestamp,
			QueuedAt:        a.QueuedAt,
			Expired:         a.Age(now) > window,
		})
	}
	return entries
}
