package runs

import (
	"sync"
	"sync/atomic"

	"github.com/ajaysolanky/namazing-sub000/internal/model"
)

// Listener receives events synchronously on the publishing goroutine. It
// must not block; hand the event off (e.g. to a buffered channel) instead.
type Listener func(model.Event)

// Broadcaster delivers published events to the listeners attached at the
// time of publishing, in subscription order. There is no replay: a listener
// only sees events published after it subscribed.
type Broadcaster struct {
	mu   sync.Mutex
	subs []*subscription
}

type subscription struct {
	fn     Listener
	active atomic.Bool
}

// Subscribe attaches fn and returns a function that detaches it. The
// returned function is idempotent and takes effect immediately, including
// for a Publish already in progress.
func (b *Broadcaster) Subscribe(fn Listener) (unsubscribe func()) {
	s := &subscription{fn: fn}
	s.active.Store(true)

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()

	return func() {
		if !s.active.Swap(false) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, other := range b.subs {
			if other == s {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every active listener with e. Callers serialize Publish to
// get FIFO delivery; the Record does this for run events.
func (b *Broadcaster) Publish(e model.Event) {
	b.mu.Lock()
	subs := append([]*subscription(nil), b.subs...)
	b.mu.Unlock()

	for _, s := range subs {
		if s.active.Load() {
			s.fn(e)
		}
	}
}

// Len returns the number of attached listeners.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
