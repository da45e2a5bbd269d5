// Package cli is the shopctl command tree. Every invocation is a
// short-lived tab on the configured storage.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"FirstShop/internal/catalog"
	"FirstShop/internal/config"
	"FirstShop/internal/storage"
)

var ValidFormats = []string{"text", "json"}

// Env is what commands run against. Tests swap OpenStorage to share one
// in-memory origin across invocations.
type Env struct {
	Config      config.Config
	Log         *zap.Logger
	OpenStorage func(ctx context.Context, o storage.Options, log *zap.Logger) (storage.Store, error)
	Catalog     func(location string) catalog.Source
}

func DefaultEnv(cfg config.Config, log *zap.Logger) *Env {
	return &Env{
		Config:      cfg,
		Log:         log,
		OpenStorage: storage.Open,
		Catalog:     catalog.NewSource,
	}
}

type RootOptions struct {
	Format  string
	Storage string
	Catalog string

	env *Env
}

func NewRootCommand(env *Env) *cobra.Command {
	if env.Log == nil {
		env.Log = zap.NewNop()
	}
	opts := &RootOptions{env: env}

	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "Inspect and edit the FirstShop catalog, cart and checkout",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			switch opts.Storage {
			case storage.DriverMemory, storage.DriverRedis, storage.DriverPostgres:
			default:
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid storage %q", opts.Storage))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", env.Config.Storage.Driver, "storage driver (memory|redis|postgres)")
	cmd.PersistentFlags().StringVar(&opts.Catalog, "catalog", env.Config.CatalogSource, "catalog file path or URL")

	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))

	return cmd
}
