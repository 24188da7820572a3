package install

import (
	"time"

	"github.com/the-maldridge/quack/pkg/storage"
)

// WithInventory shares the installed package set with other
// components.
func WithInventory(i *Inventory) Option {
	return func(o *Orchestrator) {
		o.inv = i
	}
}

// WithHistory records every attempt in h.
func WithHistory(h *storage.History) Option {
	return func(o *Orchestrator) {
		o.hist = h
	}
}

// WithClock replaces time.Now for history records.
func WithClock(f func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = f
	}
}
