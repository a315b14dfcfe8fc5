package services

import (
	"context"
	"sync"

	"github.com/tsurilog/fishlog-backend/internal/errs"
	"github.com/tsurilog/fishlog-backend/internal/live"
	"github.com/tsurilog/fishlog-backend/internal/models"
)

// Feed view names, matching the two post rankings on the home screen.
const (
	FeedLatest  = "latest"
	FeedLargest = "largest"
)

type feedPFStore interface {
	WatchLatestByArea(ctx context.Context, area string) *live.Handle[*models.Post]
	WatchLargestByArea(ctx context.Context, area string) *live.Handle[*models.Post]
}

// PostFeed is one client's live view of a region tab. Each Switch tears down
// the previous subscription and installs a new one; the last switch wins, and
// no snapshot from a previous view/area pair is delivered after a switch.
type PostFeed struct {
	store feedPFStore

	out  chan []*models.Post
	errc chan error

	mu     sync.Mutex
	view   live.View[*models.Post]
	gen    int
	closed bool
}

func NewPostFeed(store feedPFStore) *PostFeed {
	return &PostFeed{
		store: store,
		out:   make(chan []*models.Post, 1),
		errc:  make(chan error, 1),
	}
}

// Switch re-parametrizes the feed. The previous handle is fully released
// before the new one is installed; an in-flight delivery from it is dropped.
func (f *PostFeed) Switch(ctx context.Context, view, area string) error {
	if area == "" {
		return errs.NewValidationError("area is required")
	}

	var h *live.Handle[*models.Post]
	switch view {
	case FeedLatest:
		h = f.store.WatchLatestByArea(ctx, area)
	case FeedLargest:
		h = f.store.WatchLargestByArea(ctx, area)
	default:
		return errs.NewValidationError(`view must be "latest" or "largest"`)
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		h.Close()
		return errs.NewValidationError("feed is closed")
	}
	f.gen++
	gen := f.gen
	f.view.Bind(h)
	// Drop a buffered snapshot the consumer has not read yet; it belongs to
	// the previous parameters.
	select {
	case <-f.out:
	default:
	}
	f.mu.Unlock()

	go f.pump(gen, h)
	return nil
}

// Updates yields full snapshots for the currently selected view. Latest wins:
// an unread snapshot is replaced, never queued.
func (f *PostFeed) Updates() <-chan []*models.Post {
	return f.out
}

// Errs yields at most one terminal subscription error for the current view.
func (f *PostFeed) Errs() <-chan error {
	return f.errc
}

// Close releases the active subscription. The feed cannot be switched again.
func (f *PostFeed) Close() {
	f.mu.Lock()
	f.closed = true
	f.gen++
	f.mu.Unlock()
	f.view.Release()
}

func (f *PostFeed) pump(gen int, h *live.Handle[*models.Post]) {
	for snap := range h.Updates() {
		if !f.forward(gen, snap) {
			return
		}
	}
	if err := h.Err(); err != nil {
		f.fail(gen, err)
	}
}

// forward publishes a snapshot unless the feed has moved past gen. Publishing
// holds the lock so a concurrent Switch cannot interleave a stale snapshot
// after its drain.
func (f *PostFeed) forward(gen int, snap []*models.Post) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.closed {
		return false
	}
	for {
		select {
		case f.out <- snap:
			return true
		default:
		}
		select {
		case <-f.out:
		default:
		}
	}
}

func (f *PostFeed) fail(gen int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.closed {
		return
	}
	select {
	case f.errc <- err:
	default:
	}
}
