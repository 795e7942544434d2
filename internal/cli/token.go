package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/platform/http/middleware"
)

type TokenOptions struct {
	*RootOptions
	Subject string
	Role    string
	TTL     time.Duration
}

func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TokenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a reporter bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := middleware.NewToken([]byte(opts.Config.JWTSecret), opts.Subject,
				domain.ReporterRole(opts.Role), opts.TTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Subject, "sub", "", "reporter id")
	cmd.Flags().StringVar(&opts.Role, "role", string(domain.RoleCitizen), "citizen or inspector")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 30*24*time.Hour, "token lifetime")
	cmd.MarkFlagRequired("sub")

	return cmd
}
