package responder

//go:generate go run github.com/golang/mock/mockgen -package=responder -destination=mock_test.go github.com/Fantom-foundation/segpipe/face Producer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/segpipe/face"
	"github.com/Fantom-foundation/segpipe/kvdb/memorydb"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
	"github.com/Fantom-foundation/segpipe/segment"
	"github.com/Fantom-foundation/segpipe/signer"
)

func generated(t *testing.T, prefix name.Name, count uint64) (*segment.Store, *signer.KeyChain) {
	keys, err := signer.Generate()
	require.NoError(t, err)
	store, err := segment.NewStore(memorydb.New(), segment.LiteStoreConfig())
	require.NoError(t, err)
	cfg := segment.DefaultConfig()
	cfg.MaxCount = count
	s, err := segment.New(cfg, prefix, keys, store)
	require.NoError(t, err)
	require.NoError(t, s.Generate())
	return store, keys
}

// startWithMock starts r on a mock face and returns the registered handler.
func startWithMock(t *testing.T, r *Responder, prefix name.Name) face.InterestHandler {
	ctrl := gomock.NewController(t)
	producer := NewMockProducer(ctrl)

	var handler face.InterestHandler
	producer.EXPECT().Register(gomock.Any(), gomock.Any()).
		Times(1).
		DoAndReturn(func(n name.Name, h face.InterestHandler) error {
			require.True(t, prefix.Equal(n))
			handler = h
			return nil
		})
	require.NoError(t, r.Start(producer))
	require.NotNil(t, handler)
	return handler
}

type replies chan *packet.Data

func (rr replies) reply(d *packet.Data) error {
	rr <- d
	return nil
}

func (rr replies) next(t *testing.T) *packet.Data {
	select {
	case d := <-rr:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("no reply")
		return nil
	}
}

func (rr replies) none(t *testing.T) {
	select {
	case d := <-rr:
		t.Fatalf("unexpected reply %s", d.Name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRespondsInRange(t *testing.T) {
	require := require.New(t)

	prefix := name.MustParse("/test/obj")
	store, _ := generated(t, prefix, 5)

	r := New(LiteConfig(), prefix, store, 5)
	defer r.Stop()
	handler := startWithMock(t, r, prefix)

	rr := make(replies, 1)
	handler(packet.NewInterest(prefix.AppendSegment(3)), rr.reply)
	d := rr.next(t)

	stored, err := store.GetData(3)
	require.NoError(err)
	require.Equal(stored, d)

	// replies are served verbatim
	wire, err := packet.EncodeData(d)
	require.NoError(err)
	storedWire, err := store.Get(3)
	require.NoError(err)
	require.Equal(storedWire, wire)

	require.Eventually(func() bool { return r.Served() == 1 }, time.Second, time.Millisecond)
}

func TestDropsOutOfRange(t *testing.T) {
	prefix := name.MustParse("/test/obj")
	store, _ := generated(t, prefix, 5)

	r := New(LiteConfig(), prefix, store, 5)
	defer r.Stop()
	handler := startWithMock(t, r, prefix)

	rr := make(replies, 1)
	handler(packet.NewInterest(prefix.AppendSegment(5)), rr.reply)
	handler(packet.NewInterest(prefix.AppendSegment(7)), rr.reply)
	handler(packet.NewInterest(prefix.Append(name.Component("nope"))), rr.reply)
	rr.none(t)
	require.Equal(t, uint64(0), r.Served())
}

func TestDropsNamesOutsidePrefix(t *testing.T) {
	prefix := name.MustParse("/test/obj")
	store, _ := generated(t, prefix, 5)

	r := New(LiteConfig(), prefix, store, 5)
	defer r.Stop()
	handler := startWithMock(t, r, prefix)

	// routed here by longest prefix, but no stored segment is named like this
	rr := make(replies, 1)
	handler(packet.NewInterest(prefix.Append(name.Component("x")).AppendSegment(2)), rr.reply)
	handler(packet.NewInterest(prefix.AppendSegment(3).AppendSegment(0)), rr.reply)
	rr.none(t)
	require.Equal(t, uint64(0), r.Served())

	handler(packet.NewInterest(prefix.AppendSegment(2)), rr.reply)
	require.True(t, prefix.AppendSegment(2).Equal(rr.next(t).Name))
}

func TestStopConcurrently(t *testing.T) {
	prefix := name.MustParse("/test/obj")
	store, _ := generated(t, prefix, 1)
	r := New(LiteConfig(), prefix, store, 1)
	startWithMock(t, r, prefix)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Stop()
		}()
	}
	wg.Wait()
	r.Stop()
}

func TestDelay(t *testing.T) {
	prefix := name.MustParse("/test/obj")
	store, _ := generated(t, prefix, 1)

	cfg := LiteConfig()
	cfg.Delay = 100 * time.Millisecond
	r := New(cfg, prefix, store, 1)
	defer r.Stop()
	handler := startWithMock(t, r, prefix)

	rr := make(replies, 1)
	start := time.Now()
	handler(packet.NewInterest(prefix.AppendSegment(0)), rr.reply)
	rr.next(t)
	require.GreaterOrEqual(t, time.Since(start), cfg.Delay)
}

func TestRegisterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	producer := NewMockProducer(ctrl)
	producer.EXPECT().Register(gomock.Any(), gomock.Any()).
		Times(1).
		Return(errors.New("refused"))

	r := New(LiteConfig(), name.MustParse("/x"), nil, 1)
	defer r.Stop()
	require.Error(t, r.Start(producer))
}

func TestEcho(t *testing.T) {
	require := require.New(t)

	keys, err := signer.Generate()
	require.NoError(err)

	prefix := name.MustParse("/hello")
	r := NewEcho(LiteConfig(), prefix, keys)
	defer r.Stop()
	handler := startWithMock(t, r, prefix)

	rr := make(replies, 1)
	handler(packet.NewInterest(name.MustParse("/hello/world")), rr.reply)
	d := rr.next(t)
	require.Equal("Hello /hello/world", string(d.Content))
	require.NoError(signer.NewValidator(keys.PublicKey()).Verify(d))
	_, ok := d.FinalSegment()
	require.False(ok)
}
