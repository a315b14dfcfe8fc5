// Package live models a change-notification subscription as an explicit
// resource: a Handle delivers full snapshots of a query's result set until it
// is closed, and a View guarantees at most one live Handle per logical list.
package live

import (
	"context"
	"sync"
)

// Handle is the runtime state of one subscription. Every delivery on
// Updates() is the complete current result sequence, already ordered by the
// store; nothing incremental is ever exposed. The channel is closed when the
// subscription ends, after which Err reports why (nil for a plain Close).
type Handle[T any] struct {
	updates chan []T
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

// Open starts a subscription. run must block, calling deliver for each full
// snapshot, until its context is canceled or the listener fails; its return
// value becomes the Handle's terminal error. Open never blocks.
func Open[T any](ctx context.Context, run func(ctx context.Context, deliver func([]T)) error) *Handle[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle[T]{
		updates: make(chan []T, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer close(h.updates)
		err := run(ctx, h.deliver)
		if err != nil && ctx.Err() == nil {
			h.mu.Lock()
			h.err = err
			h.mu.Unlock()
		}
	}()

	return h
}

// Updates yields full result snapshots. A slow consumer only ever sees the
// most recent snapshot: a pending undelivered one is replaced, not queued.
func (h *Handle[T]) Updates() <-chan []T {
	return h.updates
}

// Err reports why the subscription ended. Only meaningful once Updates() has
// been closed; a Handle torn down by Close reports nil.
func (h *Handle[T]) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Close releases the listener and waits for the pump goroutine to exit. Safe
// to call more than once. A Handle that is never closed holds its listener
// open indefinitely.
func (h *Handle[T]) Close() {
	h.closeOnce.Do(h.cancel)
	<-h.done
}

func (h *Handle[T]) deliver(snapshot []T) {
	for {
		select {
		case h.updates <- snapshot:
			return
		default:
		}
		// Buffer full: drop the stale snapshot and retry.
		select {
		case <-h.updates:
		default:
		}
	}
}

// View owns the single live Handle backing one on-screen list. Rebinding on a
// filter-parameter change closes the previous Handle before the new one is
// installed, so two subscriptions for the same list never coexist.
type View[T any] struct {
	mu sync.Mutex
	h  *Handle[T]
}

// Bind installs h as the view's subscription, tearing down any prior one.
func (v *View[T]) Bind(h *Handle[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.h != nil {
		v.h.Close()
	}
	v.h = h
}

// Current returns the bound Handle, or nil when the view is released.
func (v *View[T]) Current() *Handle[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.h
}

// Release tears down the bound Handle. Mandatory on every view exit path.
func (v *View[T]) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.h != nil {
		v.h.Close()
		v.h = nil
	}
}
