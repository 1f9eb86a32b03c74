package usecase

import (
	"sync"
	"time"

	"multitimer/internal/domain"
)

const defaultFeedSize = 64

// FeedEntry is one boundary event as recorded by the service.
type FeedEntry struct {
	Seq   uint64       `json:"seq"`
	At    time.Time    `json:"at"`
	Event domain.Event `json:"event"`
}

// eventFeed keeps the most recent events in a ring and fans them out to
// subscribers.
type eventFeed struct {
	mu     sync.Mutex
	buf    []FeedEntry
	next   uint64
	subs   map[int]func(FeedEntry)
	nextID int
}

func newEventFeed(size int) *eventFeed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &eventFeed{
		buf:  make([]FeedEntry, 0, size),
		next: 1,
		subs: make(map[int]func(FeedEntry)),
	}
}

func (f *eventFeed) publish(at time.Time, ev domain.Event) {
	f.mu.Lock()
	entry := FeedEntry{Seq: f.next, At: at, Event: ev}
	f.next++
	if len(f.buf) < cap(f.buf) {
		f.buf = append(f.buf, entry)
	} else {
		copy(f.buf, f.buf[1:])
		f.buf[len(f.buf)-1] = entry
	}
	subs := make([]func(FeedEntry), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(entry)
	}
}

// since returns retained entries with Seq > after, oldest first.
func (f *eventFeed) since(after uint64) []FeedEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FeedEntry
	for _, e := range f.buf {
		if e.Seq > after {
			out = append(out, e)
		}
	}
	return out
}

func (f *eventFeed) subscribe(fn func(FeedEntry)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}
