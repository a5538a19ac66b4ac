package leaderboard

import "sync"

// Feed fans out leaderboard snapshots to subscribers.
// Snapshots are immutable: each subscriber receives its own copy.
// Safe for concurrent use.
type Feed struct {
	mu     sync.Mutex
	latest []Entry
	subs   map[uint64]*Subscription
	nextID uint64
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		subs: make(map[uint64]*Subscription),
	}
}

// Subscription receives ranked snapshots on C.
// C holds at most one pending snapshot; a newer one replaces an unread older
// one, so a slow reader only ever sees the latest list and the feed never
// blocks on it.
type Subscription struct {
	C <-chan []Entry

	ch     chan []Entry
	feed   *Feed
	id     uint64
	once   sync.Once
	closed bool
}

// Subscribe registers a new subscriber. If the feed already holds a
// snapshot it is delivered immediately.
func (f *Feed) Subscribe() *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan []Entry, 1)
	s := &Subscription{C: ch, ch: ch, feed: f, id: f.nextID}
	f.nextID++
	f.subs[s.id] = s

	if f.latest != nil {
		ch <- clone(f.latest)
	}
	return s
}

// Cancel unregisters the subscription and closes C.
// Safe to call multiple times.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		defer s.feed.mu.Unlock()
		delete(s.feed.subs, s.id)
		s.closed = true
		close(s.ch)
	})
}

// Publish replaces the current snapshot and notifies subscribers.
// Returns false when the list is unchanged and nothing was sent.
func (f *Feed) Publish(ranked []Entry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.latest != nil && equalEntries(f.latest, ranked) {
		return false
	}
	f.latest = clone(ranked)

	for _, s := range f.subs {
		s.deliver(clone(f.latest))
	}
	return true
}

// Latest returns a copy of the most recent snapshot (nil before the first Publish).
func (f *Feed) Latest() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return nil
	}
	return clone(f.latest)
}

// Subscribers returns the number of active subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// deliver is called with the feed lock held.
func (s *Subscription) deliver(snapshot []Entry) {
	if s.closed {
		return
	}
	select {
	case s.ch <- snapshot:
		return
	default:
	}
	// Buffer full: drop the stale snapshot and retry (best effort)
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snapshot:
	default:
	}
}

func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
