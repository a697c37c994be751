// Package udpface carries interests and data as single UDP datagrams.
package udpface

import (
	"net"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/face"
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
)

// MaxPacketSize is the largest encoded packet a datagram can carry.
const MaxPacketSize = 65507

// ErrTooLarge is returned when an encoded packet does not fit a datagram.
var ErrTooLarge = errors.New("packet too large for a datagram")

// Producer is a UDP producer face. It answers every sender of an interest.
type Producer struct {
	conn   *net.UDPConn
	routes *face.Routes

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	log.Logger
}

// Listen opens a producer face on addr, e.g. ":6363".
func Listen(addr string) (*Producer, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", addr)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	p := &Producer{
		conn:   conn,
		routes: face.NewRoutes(),
		quit:   make(chan struct{}),
		Logger: log.New("module", "udpface", "addr", conn.LocalAddr().String()),
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.readLoop()
	}()
	return p, nil
}

// Addr is the local address the producer listens on.
func (p *Producer) Addr() net.Addr {
	return p.conn.LocalAddr()
}

// Register implements face.Producer.
func (p *Producer) Register(prefix name.Name, h face.InterestHandler) error {
	select {
	case <-p.quit:
		return face.ErrClosed
	default:
	}
	return p.routes.Add(prefix, h)
}

func (p *Producer) readLoop() {
	buf := make([]byte, MaxPacketSize)
	for {
		n, from, err := p.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-p.quit:
				return
			default:
			}
			p.Warn("Read failed", "err", err)
			continue
		}
		i, err := packet.DecodeInterest(buf[:n])
		if err != nil {
			p.Debug("Undecodable interest", "from", from, "err", err)
			continue
		}
		h, ok := p.routes.Lookup(i.Name)
		if !ok {
			p.Trace("No route", "name", i.Name)
			continue
		}
		h(i, p.replyTo(from))
	}
}

func (p *Producer) replyTo(to *net.UDPAddr) face.ReplyFunc {
	return func(d *packet.Data) error {
		wire, err := packet.EncodeData(d)
		if err != nil {
			return err
		}
		if len(wire) > MaxPacketSize {
			return ErrTooLarge
		}
		_, err = p.conn.WriteToUDP(wire, to)
		return err
	}
}

// Close implements face.Producer.
func (p *Producer) Close() error {
	var err error
	p.once.Do(func() {
		close(p.quit)
		err = p.conn.Close()
		p.wg.Wait()
	})
	return err
}

// Consumer is a UDP consumer face connected to one producer.
type Consumer struct {
	conn    *net.UDPConn
	pending *face.Pending

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	log.Logger
}

// Dial connects a consumer face to the producer at addr. buffer is the capacity
// of the events channel.
func Dial(addr string, buffer int) (*Consumer, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", addr)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	c := &Consumer{
		conn:    conn,
		pending: face.NewPending(buffer),
		quit:    make(chan struct{}),
		Logger:  log.New("module", "udpface", "remote", addr),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.readLoop()
	}()
	return c, nil
}

// Express implements face.Consumer.
func (c *Consumer) Express(i *packet.Interest) error {
	wire, err := packet.EncodeInterest(i)
	if err != nil {
		return err
	}
	if len(wire) > MaxPacketSize {
		return ErrTooLarge
	}
	if err := c.pending.Add(i); err != nil {
		return err
	}
	// a lost write is handled like a lost packet, by the lifetime timer
	if _, err := c.conn.Write(wire); err != nil {
		c.Debug("Write failed", "name", i.Name, "err", err)
	}
	return nil
}

func (c *Consumer) readLoop() {
	buf := make([]byte, MaxPacketSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.quit:
				return
			default:
			}
			// ICMP unreachable surfaces here while the producer is down
			c.Trace("Read failed", "err", err)
			continue
		}
		d, err := packet.DecodeData(buf[:n])
		if err != nil {
			c.Debug("Undecodable data", "err", err)
			continue
		}
		if c.pending.Satisfy(d) == 0 {
			c.Trace("Unsolicited data", "name", d.Name)
		}
	}
}

// Events implements face.Consumer.
func (c *Consumer) Events() <-chan face.Event {
	return c.pending.Events()
}

// Close implements face.Consumer.
func (c *Consumer) Close() error {
	var err error
	c.once.Do(func() {
		close(c.quit)
		c.pending.Close()
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}
