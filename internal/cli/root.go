// Package cli implements the billboard-worker maintenance commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgdevment/billboard-registry/internal/classify"
	"github.com/rgdevment/billboard-registry/internal/config"
	"github.com/rgdevment/billboard-registry/internal/domain"
	"github.com/rgdevment/billboard-registry/internal/platform/storage"
	"github.com/rgdevment/billboard-registry/internal/service"
)

// RootOptions holds state shared by every command.
type RootOptions struct {
	// Config is loaded from the environment when nil.
	Config *config.Config
}

// Backend is an opened service with its catalog. Close releases the store.
type Backend struct {
	Service service.Service
	Catalog *domain.Catalog
	Close   func()
}

func (o *RootOptions) open(ctx context.Context) (*Backend, error) {
	repo, closeRepo, err := storage.Open(ctx, o.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	catalog, err := domain.DefaultCatalog()
	if err != nil {
		closeRepo()
		return nil, err
	}
	svc := service.NewReportService(repo, nil, classify.NewPlaceholder(nil), catalog)
	return &Backend{Service: svc, Catalog: catalog, Close: closeRepo}, nil
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billboard-worker",
		Short: "Maintenance tasks for the billboard violation registry",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Config != nil {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.Config = cfg
			return nil
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the keyspace and tables if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer b.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s schema is up to date\n", opts.Config.StorageDriver)
			return nil
		},
	}
}
