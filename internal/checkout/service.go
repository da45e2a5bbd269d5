package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"FirstShop/internal/cart"
	"FirstShop/internal/pricing"
	"FirstShop/internal/storage"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrNoCheckout  = errors.New("no checkout in progress")
	ErrInvalidItem = errors.New("invalid item")
)

const DefaultOrderDelay = 2 * time.Second

const orderNumberLen = 9

type Service struct {
	kv    storage.Store
	rules pricing.Rules
	log   *zap.Logger

	// Delay stands in for the payment round trip.
	Delay          time.Duration
	Now            func() time.Time
	NewOrderNumber func() string
}

func NewService(kv storage.Store, rules pricing.Rules, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		kv:             kv,
		rules:          rules,
		log:            log,
		Delay:          DefaultOrderDelay,
		Now:            time.Now,
		NewOrderNumber: NewOrderNumber,
	}
}

// Begin snapshots the whole cart for the order page.
func (s *Service) Begin(ctx context.Context, c *cart.Store) (Snapshot, error) {
	items := c.Items()
	if len(items) == 0 {
		return Snapshot{}, ErrEmptyCart
	}
	return s.save(ctx, newSnapshot(s.rules, items, s.Now()))
}

// BuyNow snapshots a single line and leaves the cart alone.
func (s *Service) BuyNow(ctx context.Context, item cart.LineItem) (Snapshot, error) {
	if item.Quantity < 1 {
		return Snapshot{}, fmt.Errorf("%w: quantity %d", ErrInvalidItem, item.Quantity)
	}
	return s.save(ctx, newSnapshot(s.rules, []cart.LineItem{item}, s.Now()))
}

func (s *Service) save(ctx context.Context, snap Snapshot) (Snapshot, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode checkout: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyCheckout, raw); err != nil {
		return Snapshot{}, fmt.Errorf("save checkout: %w", err)
	}
	return snap, nil
}

// Current reads the stored snapshot. Anything unusable counts as no checkout.
func (s *Service) Current(ctx context.Context) (Snapshot, error) {
	raw, ok, err := s.kv.Get(ctx, storage.KeyCheckout)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read checkout: %w", err)
	}
	if !ok {
		return Snapshot{}, ErrNoCheckout
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.Warn("checkout record malformed", zap.Error(err))
		return Snapshot{}, ErrNoCheckout
	}
	if len(snap.Items) == 0 {
		return Snapshot{}, ErrNoCheckout
	}
	return snap, nil
}

// Summary is the order page: the frozen totals with tax added on top.
func (s *Service) Summary(ctx context.Context) (Order, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return Order{}, err
	}
	return Order{
		Items:     snap.Items,
		ItemCount: snap.ItemCount,
		Totals:    s.rules.OrderSummary(snap.Totals()),
		Timestamp: snap.Timestamp,
	}, nil
}

// PlaceOrder validates the form, waits out the processing delay and empties
// the cart. The checkout record stays where it is.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Store, form Form) (Confirmation, error) {
	order, err := s.Summary(ctx)
	if err != nil {
		return Confirmation{}, err
	}
	if err := form.Validate(); err != nil {
		return Confirmation{}, err
	}

	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Confirmation{}, ctx.Err()
		case <-t.C:
		}
	}

	if err := c.Clear(ctx); err != nil {
		return Confirmation{}, err
	}

	conf := Confirmation{
		OrderNumber: s.NewOrderNumber(),
		Email:       strings.TrimSpace(form.Email),
		Totals:      order.Totals,
	}
	s.log.Info("order placed",
		zap.String("order_number", conf.OrderNumber),
		zap.Int("items", order.ItemCount),
		zap.String("total", pricing.Format(conf.Totals.Total)),
	)
	return conf, nil
}

const orderAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns nine random upper-case base-36 characters.
func NewOrderNumber() string {
	id := uuid.New()
	var b strings.Builder
	b.Grow(orderNumberLen)
	for _, x := range id[:orderNumberLen] {
		b.WriteByte(orderAlphabet[int(x)%len(orderAlphabet)])
	}
	return b.String()
}
