package memface

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/segpipe/face"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

func echoHandler(i *packet.Interest, reply face.ReplyFunc) {
	_ = reply(packet.NewData(i.Name, []byte("Hello "+i.Name.String())))
}

func nextEvent(t *testing.T, c *Consumer) face.Event {
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event")
		return face.Event{}
	}
}

func TestRoundTrip(t *testing.T) {
	require := require.New(t)

	net := New()
	p := net.Producer()
	require.NoError(p.Register(name.MustParse("/hello"), echoHandler))
	defer p.Close()

	c := net.Consumer(1)
	defer c.Close()

	i := packet.NewInterest(name.MustParse("/hello/world"))
	require.NoError(c.Express(i))

	ev := nextEvent(t, c)
	require.Equal(face.DataEvent, ev.Kind)
	require.Equal(i, ev.Interest)
	require.Equal("Hello /hello/world", string(ev.Data.Content))

	delivered, dropped := net.Stats()
	require.Equal(uint64(1), delivered)
	require.Equal(uint64(0), dropped)
}

func TestNoRouteTimesOut(t *testing.T) {
	net := New()
	c := net.Consumer(1)
	defer c.Close()

	i := packet.NewInterest(name.MustParse("/nobody"))
	i.Lifetime = 20 * time.Millisecond
	require.NoError(t, c.Express(i))

	ev := nextEvent(t, c)
	require.Equal(t, face.TimeoutEvent, ev.Kind)
}

func TestDrop(t *testing.T) {
	require := require.New(t)

	net := New()
	p := net.Producer()
	require.NoError(p.Register(name.MustParse("/hello"), echoHandler))
	net.SetDrop(func(*packet.Interest) bool { return true })

	c := net.Consumer(1)
	defer c.Close()

	i := packet.NewInterest(name.MustParse("/hello"))
	i.Lifetime = 20 * time.Millisecond
	require.NoError(c.Express(i))
	require.Equal(face.TimeoutEvent, nextEvent(t, c).Kind)

	_, dropped := net.Stats()
	require.Equal(uint64(1), dropped)
}

func TestProducerClose(t *testing.T) {
	require := require.New(t)

	net := New()
	p := net.Producer()
	require.NoError(p.Register(name.MustParse("/hello"), echoHandler))
	require.ErrorIs(net.Producer().Register(name.MustParse("/hello"), echoHandler), face.ErrPrefixTaken)
	require.NoError(p.Close())

	// prefix is free again
	require.NoError(net.Producer().Register(name.MustParse("/hello"), echoHandler))
}

func TestExpressAfterClose(t *testing.T) {
	c := New().Consumer(1)
	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Express(packet.NewInterest(name.MustParse("/x"))), face.ErrClosed)
}
