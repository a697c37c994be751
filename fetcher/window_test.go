package fetcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

var testPrefix = name.MustParse("/test/object")

func segData(seg, final uint64) *packet.Data {
	d := packet.NewData(testPrefix.AppendSegment(seg), []byte("x"))
	d.SetFinalSegment(final)
	return d
}

func segOf(t *testing.T, i *packet.Interest) uint64 {
	seg, err := i.Name.Segment()
	require.NoError(t, err)
	return seg
}

// req is a request for seg as the face hands it back with its outcome.
func req(seg uint64) *packet.Interest {
	return packet.NewInterest(testPrefix.AppendSegment(seg))
}

func testWindow(pipeline int, count uint64) *Window {
	cfg := DefaultConfig()
	cfg.Pipeline = pipeline
	cfg.Count = count
	return NewWindow(cfg, testPrefix)
}

func TestWindowStart(t *testing.T) {
	require := require.New(t)

	w := testWindow(3, 0)
	reqs := w.Start()
	require.Len(reqs, 3)
	for i, r := range reqs {
		require.Equal(uint64(i), segOf(t, r))
		require.Equal(packet.DefaultLifetime, r.Lifetime)
		require.True(r.MustBeFresh)
		require.Equal(1, w.Attempts(uint64(i)))
	}
	require.Equal(3, w.Outstanding())
	require.Equal(uint64(3), w.Sent())
}

func TestWindowFinalMarker(t *testing.T) {
	require := require.New(t)

	// maxCount 5, depth 2
	w := testWindow(2, 0)
	requested := map[uint64]int{}
	queue := w.Start()
	for _, r := range queue {
		requested[segOf(t, r)]++
	}
	for len(queue) != 0 {
		r := queue[0]
		queue = queue[1:]
		accepted, next := w.OnData(r, segData(segOf(t, r), 4))
		require.True(accepted)
		require.LessOrEqual(w.Outstanding(), 2)
		if next != nil {
			requested[segOf(t, next)]++
			queue = append(queue, next)
		}
	}
	require.True(w.Done())
	require.False(w.Aborted())
	require.Equal(uint64(5), w.Received())
	require.Equal(map[uint64]int{0: 1, 1: 1, 2: 1, 3: 1, 4: 1}, requested)
}

func TestWindowTargetCount(t *testing.T) {
	require := require.New(t)

	// maxCount 10, depth 3, target 3
	w := testWindow(3, 3)
	reqs := w.Start()

	accepted, next := w.OnData(req(0), segData(0, 9))
	require.True(accepted)
	require.Nil(next)
	require.False(w.Done())

	_, next = w.OnData(req(2), segData(2, 9))
	require.Nil(next)
	require.False(w.Done())

	_, next = w.OnData(reqs[1], segData(segOf(t, reqs[1]), 9))
	require.Nil(next)
	require.True(w.Done())
	require.Equal(uint64(3), w.Received())
	require.Equal(uint64(3), w.Sent())
}

func TestWindowRetryBound(t *testing.T) {
	require := require.New(t)

	w := testWindow(1, 0)
	i := w.Start()[0]
	sends := 1
	for {
		resend := w.OnTimeout(i)
		if resend == nil {
			break
		}
		require.True(i.Name.Equal(resend.Name))
		require.Equal(i.Lifetime, resend.Lifetime)
		i = resend
		sends++
	}
	require.Equal(4, sends)
	require.True(w.Done())
	require.True(w.Aborted())
	require.Equal(0, w.Outstanding())

	// nothing happens after the abort
	accepted, next := w.OnData(req(0), segData(0, 0))
	require.False(accepted)
	require.Nil(next)
}

func TestWindowRetryThenData(t *testing.T) {
	require := require.New(t)

	w := testWindow(1, 0)
	i := w.Start()[0]
	resend := w.OnTimeout(i)
	require.NotNil(resend)
	require.Equal(2, w.Attempts(0))

	accepted, next := w.OnData(req(0), segData(0, 1))
	require.True(accepted)
	require.Equal(uint64(1), segOf(t, next))
	require.Equal(1, w.Attempts(1))
}

func TestWindowIgnoresUnknown(t *testing.T) {
	require := require.New(t)

	w := testWindow(2, 0)
	w.Start()

	accepted, _ := w.OnData(req(7), segData(7, 9))
	require.False(accepted)
	accepted, _ = w.OnData(req(0), packet.NewData(testPrefix.Append(name.Component("meta")), nil))
	require.False(accepted)

	accepted, _ = w.OnData(req(0), segData(0, 9))
	require.True(accepted)
	// duplicate
	accepted, next := w.OnData(req(0), segData(0, 9))
	require.False(accepted)
	require.Nil(next)

	require.Nil(w.OnTimeout(packet.NewInterest(testPrefix.AppendSegment(0))))
	require.Equal(uint64(1), w.Received())
}

func TestWindowReordered(t *testing.T) {
	require := require.New(t)

	w := testWindow(3, 0)
	w.Start()

	// segment 2 is the final one, and arrives first
	_, next := w.OnData(req(2), segData(2, 2))
	require.Nil(next)
	require.False(w.Done())
	_, next = w.OnData(req(0), segData(0, 2))
	require.Nil(next)
	_, next = w.OnData(req(1), segData(1, 2))
	require.Nil(next)
	require.True(w.Done())
	require.False(w.Aborted())
	require.Equal(uint64(3), w.Sent())
}

func TestWindowCancelsBeyondFinal(t *testing.T) {
	require := require.New(t)

	w := testWindow(4, 0)
	w.Start()

	// object has 2 segments, requests for 2 and 3 are cancelled
	_, next := w.OnData(req(0), segData(0, 1))
	require.Nil(next)
	require.Equal(1, w.Outstanding())
	require.Nil(w.OnTimeout(packet.NewInterest(testPrefix.AppendSegment(3))))

	_, next = w.OnData(req(1), segData(1, 1))
	require.Nil(next)
	require.True(w.Done())
	require.False(w.Aborted())
	final, ok := w.Final()
	require.True(ok)
	require.Equal(uint64(1), final)
}

func TestWindowSequentialWithDepthOne(t *testing.T) {
	require := require.New(t)

	w := testWindow(1, 0)
	reqs := w.Start()
	order := []uint64{segOf(t, reqs[0])}
	for i := uint64(0); i < 5; i++ {
		require.Equal(1, w.Outstanding())
		_, next := w.OnData(req(i), segData(i, 5))
		require.NotNil(next)
		order = append(order, segOf(t, next))
	}
	require.Equal([]uint64{0, 1, 2, 3, 4, 5}, order)
}

func TestWindowRejectsMisnamedData(t *testing.T) {
	require := require.New(t)

	w := testWindow(1, 0)
	i := w.Start()[0]

	// satisfies the interest by prefix, but isn't the segment
	accepted, next := w.OnData(i, packet.NewData(i.Name.Append(name.Component("v1")), nil))
	require.False(accepted)
	require.Nil(next)
	require.Equal(1, w.Outstanding())
	require.Equal(1, w.Attempts(0))

	// another segment's data can't answer this request either
	accepted, _ = w.OnData(i, segData(3, 7))
	require.False(accepted)
	require.Equal(uint64(0), w.Received())

	accepted, _ = w.OnData(i, segData(0, 0))
	require.True(accepted)
	require.True(w.Done())
}
