// Package workers runs queued tasks on a fixed number of goroutines.
package workers

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrTerminated is returned when enqueueing into a stopped pool.
	ErrTerminated = errors.New("terminated")
	// ErrBusy is returned by TryEnqueue when the queue is full.
	ErrBusy = errors.New("task queue is full")
)

type Workers struct {
	quit  chan struct{}
	wg    *sync.WaitGroup
	tasks chan func()
}

// New returns a pool with a queue of maxTasks. Workers exit when quit is closed
// and are tracked by wg.
func New(wg *sync.WaitGroup, quit chan struct{}, maxTasks int) *Workers {
	return &Workers{
		tasks: make(chan func(), maxTasks),
		quit:  quit,
		wg:    wg,
	}
}

func (w *Workers) Start(workersN int) {
	for i := 0; i < workersN; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			worker(w.tasks, w.quit)
		}()
	}
}

// Enqueue blocks until fn is queued or the pool is stopped.
func (w *Workers) Enqueue(fn func()) error {
	select {
	case <-w.quit:
		return ErrTerminated
	default:
	}
	select {
	case w.tasks <- fn:
		return nil
	case <-w.quit:
		return ErrTerminated
	}
}

// TryEnqueue queues fn unless the queue is full.
func (w *Workers) TryEnqueue(fn func()) error {
	select {
	case <-w.quit:
		return ErrTerminated
	default:
	}
	select {
	case w.tasks <- fn:
		return nil
	default:
		return ErrBusy
	}
}

// Drain drops the queued tasks.
func (w *Workers) Drain() {
	for {
		select {
		case <-w.tasks:
			continue
		default:
			return
		}
	}
}

// TasksCount is the number of queued tasks.
func (w *Workers) TasksCount() int {
	return len(w.tasks)
}

func worker(tasksC <-chan func(), quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case job := <-tasksC:
			job()
		}
	}
}
