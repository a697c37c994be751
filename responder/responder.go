// Package responder answers interests from pre-generated segments.
package responder

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/face"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
	"github.com/Fantom-foundation/segpipe/utils/workers"
)

// Source returns stored segments, nil if missing.
type Source interface {
	GetData(seg uint64) (*packet.Data, error)
}

// answerFunc returns the reply to i, or nil to leave i unanswered.
type answerFunc func(i *packet.Interest) (*packet.Data, error)

// Responder serves one prefix on a producer face.
type Responder struct {
	cfg    Config
	prefix name.Name
	answer answerFunc

	workers *workers.Workers
	quit    chan struct{}
	wg      sync.WaitGroup
	stopped uint32

	served uint64

	log.Logger
}

// New returns a responder for segments 0..maxCount-1 of prefix.
// Interests for other segments are dropped.
func New(cfg Config, prefix name.Name, src Source, maxCount uint64) *Responder {
	r := newResponder(cfg, prefix, "responder")
	r.answer = func(i *packet.Interest) (*packet.Data, error) {
		if !i.Name.Prefix(-1).Equal(prefix) {
			r.Debug("Not a segment of prefix", "name", i.Name)
			return nil, nil
		}
		seg, err := i.Name.Segment()
		if err != nil {
			r.Debug("Not a segment", "name", i.Name, "err", err)
			return nil, nil
		}
		if seg >= maxCount {
			r.Debug("Segment out of range", "name", i.Name, "count", maxCount)
			return nil, nil
		}
		return src.GetData(seg)
	}
	return r
}

func newResponder(cfg Config, prefix name.Name, module string) *Responder {
	r := &Responder{
		cfg:    cfg,
		prefix: prefix,
		quit:   make(chan struct{}),
		Logger: log.New("module", module, "prefix", prefix.String()),
	}
	r.workers = workers.New(&r.wg, r.quit, cfg.MaxQueuedTasks)
	return r
}

// Start registers the prefix on f and starts the reply workers.
func (r *Responder) Start(f face.Producer) error {
	if err := f.Register(r.prefix, r.onInterest); err != nil {
		return errors.Wrapf(err, "register %s", r.prefix)
	}
	r.workers.Start(r.cfg.Workers)
	r.Info("Registered prefix")
	return nil
}

// Stop interrupts the responder, dropping the queued replies.
// Stop waits until all the internal goroutines have finished.
func (r *Responder) Stop() {
	if atomic.SwapUint32(&r.stopped, 1) != 0 {
		return
	}
	close(r.quit)
	r.workers.Drain()
	r.wg.Wait()
}

// Served is the number of replies sent.
func (r *Responder) Served() uint64 {
	return atomic.LoadUint64(&r.served)
}

func (r *Responder) onInterest(i *packet.Interest, reply face.ReplyFunc) {
	err := r.workers.TryEnqueue(func() {
		r.respond(i, reply)
	})
	if err != nil {
		r.Warn("Interest dropped", "name", i.Name, "queued", r.workers.TasksCount(), "err", err)
	}
}

func (r *Responder) respond(i *packet.Interest, reply face.ReplyFunc) {
	if r.cfg.Delay > 0 {
		select {
		case <-time.After(r.cfg.Delay):
		case <-r.quit:
			return
		}
	}
	d, err := r.answer(i)
	if err != nil {
		r.Error("Failed to answer", "name", i.Name, "err", err)
		return
	}
	if d == nil {
		return
	}
	if err := reply(d); err != nil {
		r.Warn("Failed to reply", "name", i.Name, "err", err)
		return
	}
	served := atomic.AddUint64(&r.served, 1)
	r.Info("Replied", "uri", i.Name, "segment", segmentOf(d.Name), "served", served)
}

func segmentOf(n name.Name) string {
	seg, err := n.Segment()
	if err != nil {
		return "-"
	}
	return strconv.FormatUint(seg, 10)
}
