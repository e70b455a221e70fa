package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/academy-shift-go/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
// Empty connection flags fall back to the SHIFT_* environment.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	APIURL    string
	Token     string
	QueuePath string

	config *config.ClientConfig
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for shiftctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shiftctl",
		Short: "Clock shifts and sync them when the academy network is back",
		Long: `shiftctl records trainer clock actions on this device and delivers
them to the academy server. Actions taken while offline wait in a local
queue and are flushed by "shiftctl sync" or the "shiftctl watch" loop.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			logLevel := slog.LevelInfo
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if opts.APIURL != "" {
				cfg.APIURL = opts.APIURL
			}
			if opts.Token != "" {
				cfg.APIToken = opts.Token
			}
			if opts.QueuePath != "" {
				cfg.QueuePath = opts.QueuePath
			}
			opts.config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", "", "academy API base URL (default $SHIFT_API_URL)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "access token (default $SHIFT_API_TOKEN)")
	cmd.PersistentFlags().StringVar(&opts.QueuePath, "queue", "", "offline queue database (default $SHIFT_QUEUE_PATH)")

	cmd.AddCommand(NewClockCommand(opts, "clock-in"))
	cmd.AddCommand(NewClockCommand(opts, "clock-out"))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewQueueCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
