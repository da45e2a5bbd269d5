package cli

import (
	"context"

	"github.com/spf13/cobra"

	"FirstShop/internal/cart"
	"FirstShop/internal/catalog"
	"FirstShop/internal/checkout"
	"FirstShop/internal/storage"
)

// session is one tab: its storage handle plus the stores built on it.
type session struct {
	kv       storage.Store
	catalog  *catalog.Store
	cart     *cart.Store
	checkout *checkout.Service
	out      *Output
}

func (o *RootOptions) output(cmd *cobra.Command) *Output {
	return &Output{Format: o.Format, Writer: cmd.OutOrStdout()}
}

func (o *RootOptions) catalogStore(ctx context.Context) (*catalog.Store, error) {
	s := catalog.NewStore(o.env.Catalog(o.Catalog), o.env.Log)
	if err := s.Load(ctx); err != nil {
		return nil, WrapExitError(ExitCommandError, "load catalog", err)
	}
	return s, nil
}

func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	ctx := ctxOf(cmd)
	so := o.env.Config.Storage
	so.Driver = o.Storage

	kv, err := o.env.OpenStorage(ctx, so, o.env.Log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open storage", err)
	}

	c := cart.NewStore(kv, o.env.Log)
	c.Load(ctx)

	return &session{
		kv:       kv,
		catalog:  catalog.NewStore(o.env.Catalog(o.Catalog), o.env.Log),
		cart:     c,
		checkout: checkout.NewService(kv, o.env.Config.Pricing, o.env.Log),
		out:      o.output(cmd),
	}, nil
}

func (s *session) Close() error { return s.kv.Close() }

// run opens a session, hands it to fn and reports fn's error in the
// chosen format.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := o.open(cmd)
	if err != nil {
		o.output(cmd).Failure(err)
		return err
	}
	defer func() { _ = s.Close() }()

	if err := fn(ctxOf(cmd), s); err != nil {
		s.out.Failure(err)
		return err
	}
	return nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
