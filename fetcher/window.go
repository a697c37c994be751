package fetcher

import (
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

type outstanding struct {
	interest *packet.Interest
	attempts int
}

// Window is the request window of one retrieval. It is not safe for concurrent use.
//
// Requests are issued for contiguous segments starting at Config.Start, at most
// Config.Pipeline of them outstanding. Responses are matched by segment number.
type Window struct {
	cfg    Config
	prefix name.Name
	policy RetryPolicy

	pending map[uint64]*outstanding

	next     uint64
	sent     uint64
	received uint64

	final      uint64
	finalKnown bool

	complete bool
	done     bool
	aborted  bool
}

// NewWindow returns a window for segments of prefix. cfg must be valid.
func NewWindow(cfg Config, prefix name.Name) *Window {
	return &Window{
		cfg:     cfg,
		prefix:  prefix,
		policy:  RetryPolicy{MaxRetries: cfg.MaxRetries},
		pending: make(map[uint64]*outstanding, cfg.Pipeline),
		next:    cfg.Start,
	}
}

// Start returns the first Pipeline requests.
func (w *Window) Start() []*packet.Interest {
	res := make([]*packet.Interest, 0, w.cfg.Pipeline)
	for len(res) < w.cfg.Pipeline {
		res = append(res, w.issue())
	}
	return res
}

func (w *Window) issue() *packet.Interest {
	seg := w.next
	i := packet.NewInterest(w.prefix.AppendSegment(seg))
	i.Lifetime = w.cfg.Lifetime
	i.MustBeFresh = w.cfg.MustBeFresh
	w.pending[seg] = &outstanding{
		interest: i,
		attempts: 1,
	}
	w.next++
	w.sent++
	return i
}

func (w *Window) canIssue() bool {
	if w.complete {
		return false
	}
	if w.finalKnown && w.next > w.final {
		return false
	}
	return w.cfg.Count == 0 || w.sent < w.cfg.Count
}

// learnFinal bounds the window by the final segment and cancels the requests beyond it.
func (w *Window) learnFinal(final uint64) {
	if w.finalKnown && w.final <= final {
		return
	}
	w.final, w.finalKnown = final, true
	for seg := range w.pending {
		if seg > final {
			delete(w.pending, seg)
		}
	}
}

func (w *Window) checkDone() {
	if len(w.pending) == 0 && !w.canIssue() {
		w.done = true
	}
}

// OnData accepts d as the answer to the request i. It returns false if i is no
// longer outstanding or d isn't named exactly as i. next is the request to send, if any.
func (w *Window) OnData(i *packet.Interest, d *packet.Data) (accepted bool, next *packet.Interest) {
	if w.done || !d.Name.Equal(i.Name) {
		return false, nil
	}
	seg, err := i.Name.Segment()
	if err != nil {
		return false, nil
	}
	if _, ok := w.pending[seg]; !ok {
		return false, nil
	}
	delete(w.pending, seg)
	w.received++

	if final, ok := d.FinalSegment(); ok {
		w.learnFinal(final)
	}
	if IsComplete(d, seg, w.sent, w.cfg.Count) {
		w.complete = true
	}
	if w.canIssue() {
		next = w.issue()
	}
	w.checkDone()
	return true, next
}

// OnTimeout handles an expired request. It returns the resend, or nil if the
// request is no longer outstanding or the retrieval got aborted.
func (w *Window) OnTimeout(i *packet.Interest) *packet.Interest {
	if w.done {
		return nil
	}
	seg, err := i.Name.Segment()
	if err != nil {
		return nil
	}
	o, ok := w.pending[seg]
	if !ok {
		return nil
	}
	if !w.policy.Allow(o.attempts) {
		w.abort()
		return nil
	}
	o.attempts++
	o.interest = o.interest.Renew()
	return o.interest
}

func (w *Window) abort() {
	w.aborted = true
	w.done = true
	w.pending = make(map[uint64]*outstanding)
}

// Attempts is the number of times seg was sent, 0 if it isn't outstanding.
func (w *Window) Attempts(seg uint64) int {
	if o, ok := w.pending[seg]; ok {
		return o.attempts
	}
	return 0
}

// Outstanding is the number of requests waiting for data.
func (w *Window) Outstanding() int {
	return len(w.pending)
}

// Sent is the number of distinct segments requested.
func (w *Window) Sent() uint64 {
	return w.sent
}

// Received is the number of segments delivered.
func (w *Window) Received() uint64 {
	return w.received
}

// Final returns the final segment, if any response carried it.
func (w *Window) Final() (uint64, bool) {
	return w.final, w.finalKnown
}

// Done is true once no request is outstanding and none will be issued.
func (w *Window) Done() bool {
	return w.done
}

// Aborted is true if a request ran out of retries.
func (w *Window) Aborted() bool {
	return w.aborted
}
