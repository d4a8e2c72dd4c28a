package storage

import (
	"fmt"
	"time"

	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/diagram"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type options struct {
	now func() time.Time
}

// Option configures a storage backend.
type Option func(*options)

// WithClock sets the clock used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp drops the monotonic reading and location so values compare
// equal after a database round trip.
func (o options) timestamp() time.Time {
	return time.Unix(0, o.now().UnixNano()).UTC()
}

// New opens the backend selected by cfg.Backend.
func New(cfg config.StorageConfig, opts ...Option) (diagram.Storage, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStorage(opts...), nil
	case BackendSQLite, "":
		return NewSQLiteStorage(cfg.SQLite, opts...)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
