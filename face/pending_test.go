package face

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

func interest(uri string, lifetime time.Duration) *packet.Interest {
	i := packet.NewInterest(name.MustParse(uri))
	i.Lifetime = lifetime
	return i
}

func nextEvent(t *testing.T, p *Pending) Event {
	select {
	case ev := <-p.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestPendingData(t *testing.T) {
	require := require.New(t)

	p := NewPending(4)
	defer p.Close()

	i := interest("/a/b", time.Minute)
	require.NoError(p.Add(i))
	require.Equal(1, p.Len())

	require.Equal(0, p.Satisfy(packet.NewData(name.MustParse("/other"), nil)))
	require.Equal(1, p.Satisfy(packet.NewData(name.MustParse("/a/b"), nil)))
	require.Equal(0, p.Len())

	ev := nextEvent(t, p)
	require.Equal(DataEvent, ev.Kind)
	require.Equal(i, ev.Interest)
	require.NotNil(ev.Data)

	// second copy of the same data is unsolicited
	require.Equal(0, p.Satisfy(packet.NewData(name.MustParse("/a/b"), nil)))
}

func TestPendingTimeout(t *testing.T) {
	require := require.New(t)

	p := NewPending(4)
	defer p.Close()

	i := interest("/a", 10*time.Millisecond)
	require.NoError(p.Add(i))

	ev := nextEvent(t, p)
	require.Equal(TimeoutEvent, ev.Kind)
	require.Equal(i, ev.Interest)
	require.Nil(ev.Data)
	require.Equal(0, p.Len())

	// late data after the timeout is ignored
	require.Equal(0, p.Satisfy(packet.NewData(name.MustParse("/a"), nil)))
	select {
	case ev := <-p.Events():
		t.Fatalf("unexpected event %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPendingExactlyOnce(t *testing.T) {
	require := require.New(t)

	const n = 50
	p := NewPending(n)
	defer p.Close()

	for i := 0; i < n; i++ {
		require.NoError(p.Add(interest("/x", time.Millisecond)))
	}
	// race data against the timers
	d := packet.NewData(name.MustParse("/x"), nil)
	satisfied := p.Satisfy(d)

	for i := 0; i < n; i++ {
		nextEvent(t, p)
	}
	require.Equal(0, p.Len())
	require.LessOrEqual(satisfied, n)
	select {
	case <-p.Events():
		t.Fatal("extra event")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPendingClose(t *testing.T) {
	p := NewPending(0)
	require.NoError(t, p.Add(interest("/a", time.Millisecond)))
	p.Close()
	p.Close()
	require.ErrorIs(t, p.Add(interest("/a", time.Millisecond)), ErrClosed)
	require.Equal(t, 0, p.Len())
}
