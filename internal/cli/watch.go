package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/cron"
	"github.com/cmlabs-hris/academy-shift-go/internal/service/dispatcher"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep syncing in the background and print queue notifications",
		Long: `Run the deferred-sync loop until interrupted.

The queue is flushed on start, every SHIFT_SYNC_INTERVAL, and again with
backoff after the server could not be reached. Every notification sent to
open views is printed as one JSON line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, unsubscribe := rt.hub.Subscribe(dispatcher.TopicViews)
			defer unsubscribe()

			scheduler := cron.NewScheduler()
			cron.NewSyncJobs(rt.dispatcher, opts.config.SyncInterval, opts.config.RetryDelay).RegisterJobs(scheduler)
			scheduler.Start()
			defer scheduler.Stop()

			slog.Info("Watching offline queue", "interval", opts.config.SyncInterval, "queue", opts.config.QueuePath)

			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-events:
					if !ok {
						return nil
					}
					line, err := json.Marshal(event.Data)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(line))
				}
			}
		},
	}
}

