package storage

import (
	"context"
	"sync"
)

const memEventBuffer = 64

// MemArea is an in-process origin. Tabs opened on the same area see each
// other's writes through Watch, like documents sharing localStorage.
type MemArea struct {
	mu sync.RWMutex
	m  map[string][]byte

	subsMu sync.RWMutex
	subs   map[int]*memSub
	next   int
}

type memSub struct {
	tab  string
	ch   chan Event
	done chan struct{}
}

func NewMemArea() *MemArea {
	return &MemArea{
		m:    map[string][]byte{},
		subs: map[int]*memSub{},
	}
}

// Tab returns a handle that writes on behalf of tab id.
func (a *MemArea) Tab(id string) *MemStore {
	return &MemStore{area: a, tab: id}
}

type MemStore struct {
	area *MemArea
	tab  string
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Close() error { return nil }

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.area.mu.RLock()
	defer s.area.mu.RUnlock()

	v, ok := s.area.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemStore) Set(ctx context.Context, key string, value []byte) error {
	s.area.mu.Lock()
	s.area.m[key] = append([]byte(nil), value...)
	s.area.mu.Unlock()

	s.area.publish(Event{Key: key, Tab: s.tab})
	return nil
}

func (s *MemStore) Remove(ctx context.Context, key string) error {
	s.area.mu.Lock()
	_, existed := s.area.m[key]
	delete(s.area.m, key)
	s.area.mu.Unlock()

	if existed {
		s.area.publish(Event{Key: key, Tab: s.tab})
	}
	return nil
}

func (s *MemStore) Watch(ctx context.Context) (<-chan Event, error) {
	sub := &memSub{
		tab:  s.tab,
		ch:   make(chan Event, memEventBuffer),
		done: make(chan struct{}),
	}

	a := s.area
	a.subsMu.Lock()
	id := a.next
	a.next++
	a.subs[id] = sub
	a.subsMu.Unlock()

	go func() {
		<-ctx.Done()
		// done first so a publisher blocked on a full buffer lets go of subsMu
		close(sub.done)
		a.subsMu.Lock()
		delete(a.subs, id)
		close(sub.ch)
		a.subsMu.Unlock()
	}()

	return sub.ch, nil
}

func (a *MemArea) publish(ev Event) {
	a.subsMu.RLock()
	defer a.subsMu.RUnlock()

	for _, sub := range a.subs {
		if sub.tab == ev.Tab {
			continue
		}
		select {
		case sub.ch <- ev:
		case <-sub.done:
		}
	}
}
