package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/user"
	"github.com/cmlabs-hris/academy-shift-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

type TokenOptions struct {
	*RootOptions
	UserID     string
	Name       string
	Role       string
	Expiration string
}

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		Long: `Mint an access token signed with JWT_SECRET_KEY.

Meant for local development and tests where the academy sign-in service is
not available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := opts.config.JWTSecret
			if secret == "" {
				return fmt.Errorf("JWT_SECRET_KEY is required to mint tokens")
			}
			role := user.Role(opts.Role)
			if !role.IsValid() {
				return fmt.Errorf("%w: %q", user.ErrInvalidRole, opts.Role)
			}

			token, expiresAt, err := jwt.NewJWTService(secret, opts.Expiration).GenerateAccessToken(opts.UserID, opts.Name, role)
			if err != nil {
				return err
			}

			payload := map[string]any{"access_token": token, "expires_at": expiresAt}
			return writeOutput(cmd.OutOrStdout(), opts.Format, payload, func(w io.Writer) error {
				printf(w, "%s\n", token)
				printf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "trainer id (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Role, "role", string(user.RoleTrainer), "trainee|trainer|admin")
	cmd.Flags().StringVar(&opts.Expiration, "expires", "12h", "token lifetime")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}
