// Package fetcher retrieves a segmented object through a window of pipelined
// interests, resending timed out ones a bounded number of times.
package fetcher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/face"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

type Callbacks struct {
	// OnSegment is called for every delivered segment, in arrival order.
	OnSegment func(seg uint64, d *packet.Data)
	// Verify rejects data failing verification. Rejected data counts as a timeout.
	Verify func(d *packet.Data) error
}

// Result summarizes a finished retrieval.
type Result struct {
	Delivered uint64 // Number of segments delivered
	Requested uint64 // Number of distinct segments requested
	Aborted   bool   // A segment ran out of retries
	Complete  bool   // Finished without abort
}

// Fetcher drives one Window over a consumer face.
type Fetcher struct {
	cfg      Config
	window   *Window
	face     face.Consumer
	callback Callbacks

	quit     chan struct{}
	finished chan struct{}
	stopped  uint32
	wg       sync.WaitGroup

	result Result
	err    error

	log.Logger
}

// New validates cfg and returns a fetcher of the segments of prefix.
func New(cfg Config, prefix name.Name, f face.Consumer, callbacks Callbacks) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Fetcher{
		cfg:      cfg,
		window:   NewWindow(cfg, prefix),
		face:     f,
		callback: callbacks,
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
		Logger:   log.New("module", "fetcher", "prefix", prefix.String()),
	}, nil
}

// Start sends the first requests and processes events until done.
func (f *Fetcher) Start() {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer close(f.finished)
		f.err = f.loop()
		f.result = Result{
			Delivered: f.window.Received(),
			Requested: f.window.Sent(),
			Aborted:   f.window.Aborted(),
			Complete:  f.window.Done() && !f.window.Aborted(),
		}
	}()
}

// Stop interrupts the retrieval and waits for the loop to exit.
func (f *Fetcher) Stop() {
	f.terminate()
	f.wg.Wait()
}

func (f *Fetcher) terminate() {
	if atomic.SwapUint32(&f.stopped, 1) == 0 {
		close(f.quit)
	}
}

// Finished is closed when the loop exits.
func (f *Fetcher) Finished() <-chan struct{} {
	return f.finished
}

// Result is valid after Finished is closed.
func (f *Fetcher) Result() (Result, error) {
	<-f.finished
	return f.result, f.err
}

// Run starts the fetcher and waits until it's done or ctx is cancelled.
// An aborted retrieval is reported in Result, not as an error.
func (f *Fetcher) Run(ctx context.Context) (*Result, error) {
	f.Start()
	select {
	case <-f.finished:
	case <-ctx.Done():
		f.Stop()
		res, _ := f.Result()
		return &res, ctx.Err()
	}
	res, err := f.Result()
	return &res, err
}

func (f *Fetcher) loop() error {
	for _, i := range f.window.Start() {
		if err := f.express(i); err != nil {
			return err
		}
	}
	events := f.face.Events()
	for !f.window.Done() {
		select {
		case <-f.quit:
			return nil
		case ev := <-events:
			if err := f.handle(ev); err != nil {
				return err
			}
		}
	}
	if f.window.Aborted() {
		f.Warn("Retrieval aborted", "delivered", f.window.Received())
	} else {
		f.Debug("Retrieval done", "delivered", f.window.Received())
	}
	return nil
}

func (f *Fetcher) express(i *packet.Interest) error {
	if err := f.face.Express(i); err != nil {
		return errors.Wrapf(err, "express %s", i.Name)
	}
	f.Trace("Sent Interest", "name", i.Name)
	return nil
}

func (f *Fetcher) handle(ev face.Event) error {
	switch ev.Kind {
	case face.DataEvent:
		if f.callback.Verify != nil {
			if err := f.callback.Verify(ev.Data); err != nil {
				f.Warn("Data rejected", "name", ev.Data.Name, "err", err)
				return f.timeout(ev.Interest)
			}
		}
		accepted, next := f.window.OnData(ev.Interest, ev.Data)
		if !accepted {
			// the face settled the interest, so only a resend can still answer it
			f.Trace("Unmatched data", "interest", ev.Interest.Name, "name", ev.Data.Name)
			return f.timeout(ev.Interest)
		}
		if f.callback.OnSegment != nil {
			seg, _ := ev.Interest.Name.Segment()
			f.callback.OnSegment(seg, ev.Data)
		}
		if next != nil {
			return f.express(next)
		}
	case face.TimeoutEvent:
		return f.timeout(ev.Interest)
	}
	return nil
}

func (f *Fetcher) timeout(i *packet.Interest) error {
	seg, err := i.Name.Segment()
	if err != nil {
		return nil
	}
	attempts := f.window.Attempts(seg)
	if attempts == 0 {
		return nil
	}
	f.Info("TIMEOUT", "attempt", attempts, "segment", seg)
	if resend := f.window.OnTimeout(i); resend != nil {
		return f.express(resend)
	}
	return nil
}
