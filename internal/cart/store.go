package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"FirstShop/internal/pricing"
	"FirstShop/internal/storage"
)

type State int

const (
	Stale State = iota
	Fresh
)

func (s State) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "stale"
}

// Store is this tab's copy of the cart. Every mutation is written through
// to the shared store before it is visible here. Other tabs writing the
// same key are not coordinated with; the last write wins.
type Store struct {
	kv  storage.Store
	log *zap.Logger

	mu    sync.Mutex
	items []LineItem
	state State
}

func NewStore(kv storage.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: kv, log: log}
}

// Load replaces the in-memory cart with the stored record. A missing,
// unreadable or malformed record yields an empty cart. The read happens
// under mu so it cannot land on top of a commit from this tab.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

// LoadIfStale loads only when the tab has not read the record yet or was
// told it changed.
func (s *Store) LoadIfStale(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Stale {
		s.loadLocked(ctx)
	}
}

func (s *Store) MarkStale() {
	s.mu.Lock()
	s.state = Stale
	s.mu.Unlock()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// loadLocked reads and adopts the stored record. Caller holds mu.
func (s *Store) loadLocked(ctx context.Context) {
	s.items = s.read(ctx)
	s.state = Fresh
}

func (s *Store) read(ctx context.Context) []LineItem {
	raw, ok, err := s.kv.Get(ctx, storage.KeyCart)
	if err != nil {
		s.log.Warn("cart read failed, starting empty", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	var stored []LineItem
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn("cart record malformed, starting empty", zap.Error(err))
		return nil
	}

	items := make([]LineItem, 0, len(stored))
	seen := make(map[int64]struct{}, len(stored))
	for _, it := range stored {
		if it.Quantity < 1 {
			s.log.Warn("dropping cart line with bad quantity", zap.Int64("id", it.ID), zap.Int("quantity", it.Quantity))
			continue
		}
		if _, dup := seen[it.ID]; dup {
			s.log.Warn("dropping duplicate cart line", zap.Int64("id", it.ID))
			continue
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
	}
	return items
}

func (s *Store) AddItem(ctx context.Context, item LineItem) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(s.items)
	if i := indexOf(next, item.ID); i >= 0 {
		next[i].Quantity += item.Quantity
	} else {
		next = append(next, item)
	}
	return s.commit(ctx, next)
}

// UpdateQuantity sets an absolute quantity. Anything below 1 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id int64, qty int) error {
	if qty < 1 {
		return s.RemoveItem(ctx, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, id)
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.items)
	next[i].Quantity = qty
	return s.commit(ctx, next)
}

func (s *Store) RemoveItem(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.items), i, i+1)
	return s.commit(ctx, next)
}

// Clear drops the stored record altogether.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, storage.KeyCart); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.items = nil
	s.state = Fresh
	return nil
}

func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Summary(r pricing.Rules) pricing.CartTotals {
	return pricing.CartSummary(r, s.Items())
}

// commit persists next and adopts it. Caller holds mu.
func (s *Store) commit(ctx context.Context, next []LineItem) error {
	if next == nil {
		next = []LineItem{}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyCart, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	s.items = next
	s.state = Fresh
	return nil
}

func indexOf(items []LineItem, id int64) int {
	return slices.IndexFunc(items, func(it LineItem) bool { return it.ID == id })
}
