// Package face defines how consumers express interests and producers answer them,
// independent of the underlying transport.
package face

import (
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

// ErrClosed is returned by operations on a closed face.
var ErrClosed = errors.New("face closed")

// EventKind tags an Event.
type EventKind int

const (
	// DataEvent means the interest was answered.
	DataEvent EventKind = iota
	// TimeoutEvent means the interest lifetime expired without an answer.
	TimeoutEvent
)

func (k EventKind) String() string {
	switch k {
	case DataEvent:
		return "data"
	case TimeoutEvent:
		return "timeout"
	default:
		return "unknown"
	}
}

// Event is the outcome of one expressed interest.
// Every expressed interest yields exactly one event.
type Event struct {
	Kind     EventKind
	Interest *packet.Interest
	Data     *packet.Data // nil on timeout
}

// Consumer expresses interests.
type Consumer interface {
	// Express sends the interest. Its outcome is delivered on Events.
	Express(i *packet.Interest) error
	// Events returns the channel of interest outcomes.
	Events() <-chan Event
	Close() error
}

// ReplyFunc sends data back to the requester of an interest.
type ReplyFunc func(d *packet.Data) error

// InterestHandler is called for every interest under a registered prefix.
// It may reply at most once, from any goroutine, or not at all.
type InterestHandler func(i *packet.Interest, reply ReplyFunc)

// Producer dispatches incoming interests to registered handlers.
type Producer interface {
	// Register routes interests under prefix to h. It fails if prefix is already taken.
	Register(prefix name.Name, h InterestHandler) error
	Close() error
}
