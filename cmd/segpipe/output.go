package main

import (
	"io"
)

// orderedWriter writes segment payloads in segment order, holding back the ones
// which arrive ahead of a missing predecessor.
type orderedWriter struct {
	w       io.Writer
	next    uint64
	pending map[uint64][]byte
	err     error
}

func newOrderedWriter(w io.Writer, first uint64) *orderedWriter {
	return &orderedWriter{
		w:       w,
		next:    first,
		pending: make(map[uint64][]byte),
	}
}

func (o *orderedWriter) Add(seg uint64, payload []byte) {
	if o.err != nil || seg < o.next {
		return
	}
	o.pending[seg] = payload
	for {
		p, ok := o.pending[o.next]
		if !ok {
			return
		}
		delete(o.pending, o.next)
		o.next++
		if _, err := o.w.Write(p); err != nil {
			o.err = err
			return
		}
	}
}

// Gaps is the number of segments held back.
func (o *orderedWriter) Gaps() int {
	return len(o.pending)
}

func (o *orderedWriter) Err() error {
	return o.err
}
