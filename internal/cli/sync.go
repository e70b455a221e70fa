package cli

import (
	"io"

	"github.com/cmlabs-hris/academy-shift-go/internal/service/dispatcher"
	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Flush the offline queue once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			out, err := rt.dispatcher.Sync(cmd.Context())
			if err != nil {
				return err
			}
			err = writeOutput(cmd.OutOrStdout(), opts.Format, out, func(w io.Writer) error {
				switch out.Kind {
				case dispatcher.OutcomeAuthNeeded:
					printf(w, "session expired: sign in again, %d action(s) kept\n", out.Remaining)
				case dispatcher.OutcomeDeferred:
					printf(w, "server answered %d: %d action(s) kept for a later sync\n", out.Status, out.Remaining)
				default:
					printf(w, "synced %d, dropped %d expired, %d left\n", len(out.Processed), len(out.Expired), out.Remaining)
					for _, r := range out.Results {
						if r.Error != "" {
							printf(w, "  %s %s: %s\n", r.Type, r.Status, r.Error)
						} else {
							printf(w, "  %s %s\n", r.Type, r.Status)
						}
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			if out.Kind == dispatcher.OutcomeAuthNeeded {
				return &ExitError{Code: ExitAuthNeeded, Message: "sign in again to sync queued actions"}
			}
			return nil
		},
	}
}
