package face

import (
	"sync"
	"time"

	"github.com/Fantom-foundation/segpipe/packet"
)

type pendingEntry struct {
	interest *packet.Interest
	timer    *time.Timer
}

// Pending is the table of expressed, not yet answered interests of a consumer.
// Each entry is removed exactly once, either by matching data or by its lifetime
// timer, and produces exactly one Event.
type Pending struct {
	entries map[uint64]*pendingEntry
	nextID  uint64
	closed  bool
	mu      sync.Mutex

	events chan Event
	quit   chan struct{}
}

// NewPending returns a table delivering outcomes on a channel of the given capacity.
func NewPending(buffer int) *Pending {
	return &Pending{
		entries: make(map[uint64]*pendingEntry),
		events:  make(chan Event, buffer),
		quit:    make(chan struct{}),
	}
}

// Events returns the outcomes channel. It is never closed.
func (p *Pending) Events() <-chan Event {
	return p.events
}

// Add starts the lifetime timer of i.
func (p *Pending) Add(i *packet.Interest) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	id := p.nextID
	p.nextID++
	e := &pendingEntry{interest: i}
	e.timer = time.AfterFunc(i.Lifetime, func() {
		p.expire(id)
	})
	p.entries[id] = e
	return nil
}

func (p *Pending) expire(id uint64) {
	p.mu.Lock()
	e, ok := p.entries[id]
	if ok {
		delete(p.entries, id)
	}
	p.mu.Unlock()

	if ok {
		p.emit(Event{Kind: TimeoutEvent, Interest: e.interest})
	}
}

// Satisfy removes every entry d answers and returns how many there were.
// Unsolicited data satisfies nothing.
func (p *Pending) Satisfy(d *packet.Data) int {
	var matched []*pendingEntry

	p.mu.Lock()
	for id, e := range p.entries {
		if d.Satisfies(e.interest) {
			e.timer.Stop()
			delete(p.entries, id)
			matched = append(matched, e)
		}
	}
	p.mu.Unlock()

	for _, e := range matched {
		p.emit(Event{Kind: DataEvent, Interest: e.interest, Data: d})
	}
	return len(matched)
}

func (p *Pending) emit(ev Event) {
	select {
	case p.events <- ev:
	case <-p.quit:
	}
}

// Len is the number of pending interests.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.entries)
}

// Close stops all timers. Pending interests produce no events afterwards.
func (p *Pending) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for id, e := range p.entries {
		e.timer.Stop()
		delete(p.entries, id)
	}
	close(p.quit)
}
