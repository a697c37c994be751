// Package memface is an in-process network of faces. Packets cross it in their
// wire encoding, so it behaves like a real transport without sockets.
package memface

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/Fantom-foundation/segpipe/face"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

// DropFunc decides whether an interest is lost on its way to the producer.
type DropFunc func(i *packet.Interest) bool

// Network routes interests from consumers to producers by longest prefix.
type Network struct {
	routes *face.Routes

	latency time.Duration
	drop    DropFunc
	mu      sync.RWMutex

	delivered uint64
	dropped   uint64

	log.Logger
}

func New() *Network {
	return &Network{
		routes: face.NewRoutes(),
		Logger: log.New("module", "memface"),
	}
}

// SetLatency delays every interest by d.
func (n *Network) SetLatency(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.latency = d
}

// SetDrop installs a loss function. nil delivers everything.
func (n *Network) SetDrop(fn DropFunc) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.drop = fn
}

// Stats returns the number of delivered and dropped interests.
func (n *Network) Stats() (delivered, dropped uint64) {
	return atomic.LoadUint64(&n.delivered), atomic.LoadUint64(&n.dropped)
}

func (n *Network) conditions() (time.Duration, DropFunc) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.latency, n.drop
}

// Producer returns a new producer face attached to the network.
func (n *Network) Producer() *Producer {
	return &Producer{net: n}
}

// Consumer returns a new consumer face attached to the network.
func (n *Network) Consumer(buffer int) *Consumer {
	return &Consumer{
		net:     n,
		pending: face.NewPending(buffer),
	}
}

// forward carries an encoded interest to its producer and the answer back.
func (n *Network) forward(wire []byte, back func([]byte)) {
	i, err := packet.DecodeInterest(wire)
	if err != nil {
		n.Warn("Undecodable interest", "err", err)
		return
	}
	latency, drop := n.conditions()
	if drop != nil && drop(i) {
		atomic.AddUint64(&n.dropped, 1)
		n.Trace("Dropped interest", "name", i.Name)
		return
	}
	h, ok := n.routes.Lookup(i.Name)
	if !ok {
		n.Trace("No route", "name", i.Name)
		return
	}
	if latency > 0 {
		time.Sleep(latency)
	}
	atomic.AddUint64(&n.delivered, 1)

	var once sync.Once
	h(i, func(d *packet.Data) error {
		dwire, err := packet.EncodeData(d)
		if err != nil {
			return err
		}
		once.Do(func() {
			back(dwire)
		})
		return nil
	})
}

// Producer is a producer face on a Network.
type Producer struct {
	net      *Network
	prefixes []name.Name
	mu       sync.Mutex
}

// Register implements face.Producer.
func (p *Producer) Register(prefix name.Name, h face.InterestHandler) error {
	if err := p.net.routes.Add(prefix, h); err != nil {
		return err
	}
	p.mu.Lock()
	p.prefixes = append(p.prefixes, prefix)
	p.mu.Unlock()
	return nil
}

// Close implements face.Producer, unregistering all the prefixes of p.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, prefix := range p.prefixes {
		p.net.routes.Remove(prefix)
	}
	p.prefixes = nil
	return nil
}

// Consumer is a consumer face on a Network.
type Consumer struct {
	net     *Network
	pending *face.Pending
}

// Express implements face.Consumer.
func (c *Consumer) Express(i *packet.Interest) error {
	wire, err := packet.EncodeInterest(i)
	if err != nil {
		return err
	}
	if err := c.pending.Add(i); err != nil {
		return err
	}
	go c.net.forward(wire, c.receive)
	return nil
}

func (c *Consumer) receive(wire []byte) {
	d, err := packet.DecodeData(wire)
	if err != nil {
		c.net.Warn("Undecodable data", "err", err)
		return
	}
	if c.pending.Satisfy(d) == 0 {
		c.net.Trace("Unsolicited data", "name", d.Name)
	}
}

// Events implements face.Consumer.
func (c *Consumer) Events() <-chan face.Event {
	return c.pending.Events()
}

// Pending is the number of unanswered interests.
func (c *Consumer) Pending() int {
	return c.pending.Len()
}

// Close implements face.Consumer.
func (c *Consumer) Close() error {
	c.pending.Close()
	return nil
}
