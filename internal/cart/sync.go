package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"FirstShop/internal/storage"
)

// ErrWatchClosed is returned by Run when the change feed ends while the
// caller still wants updates.
var ErrWatchClosed = errors.New("cart change feed closed")

// Renderer redraws whatever shows the cart after another tab changed it.
type Renderer interface {
	Render(items []LineItem, count int)
}

type RenderFunc func(items []LineItem, count int)

func (f RenderFunc) Render(items []LineItem, count int) { f(items, count) }

// Sync keeps a Store in step with writes made by other tabs.
type Sync struct {
	store    *Store
	renderer Renderer
	log      *zap.Logger
}

func NewSync(store *Store, renderer Renderer, log *zap.Logger) *Sync {
	if log == nil {
		log = zap.NewNop()
	}
	if renderer == nil {
		renderer = RenderFunc(func([]LineItem, int) {})
	}
	return &Sync{store: store, renderer: renderer, log: log}
}

// Run blocks until ctx is done or the change feed closes. Once subscribed
// it reloads, so writes made before the feed was open are not missed.
func (s *Sync) Run(ctx context.Context) error {
	events, err := s.store.kv.Watch(ctx)
	if err != nil {
		return err
	}
	s.log.Info("cart sync started")

	s.store.MarkStale()
	s.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				s.log.Error("cart change feed closed")
				return ErrWatchClosed
			}
			if ev.Key != storage.KeyCart {
				continue
			}
			s.log.Debug("cart changed in another tab", zap.String("tab", ev.Tab))
			s.store.MarkStale()
			s.Refresh(ctx)
		}
	}
}

// Refresh reloads the cart and renders it.
func (s *Sync) Refresh(ctx context.Context) {
	s.store.Load(ctx)
	s.renderer.Render(s.store.Items(), s.store.TotalItemCount())
}

// Renderers fans one render out to several renderers, in order.
func Renderers(rs ...Renderer) Renderer {
	return RenderFunc(func(items []LineItem, count int) {
		for _, r := range rs {
			if r != nil {
				r.Render(items, count)
			}
		}
	})
}
