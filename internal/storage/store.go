package storage

import (
	"context"
	"errors"
	"time"
)

// Keys shared by every tab of an origin.
const (
	KeyCart     = "cart"
	KeyCheckout = "checkout_data"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

var ErrUnknownDriver = errors.New("unknown storage driver")

// Event is the storage-change signal: Key was written or removed by Tab.
type Event struct {
	Key string `json:"key"`
	Tab string `json:"tab"`
}

// Store is a string-keyed durable store shared by all tabs of one origin.
// Every writer overwrites the whole value; there is no locking between
// tabs, so concurrent writers race and the last write wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error

	// Watch delivers events for writes made by other tabs. The channel is
	// closed once ctx is done.
	Watch(ctx context.Context) (<-chan Event, error)

	Ping(ctx context.Context) error
	Close() error
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
