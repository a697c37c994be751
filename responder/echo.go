package responder

import (
	"github.com/Fantom-foundation/segpipe/name"
	"github.com/Fantom-foundation/segpipe/packet"
	"github.com/Fantom-foundation/segpipe/signer"
)

// NewEcho returns a responder answering any name under prefix with a freshly
// signed "Hello <uri>" payload.
func NewEcho(cfg Config, prefix name.Name, s signer.Signer) *Responder {
	r := newResponder(cfg, prefix, "echo")
	r.answer = func(i *packet.Interest) (*packet.Data, error) {
		d := packet.NewData(i.Name, []byte("Hello "+i.Name.String()))
		if err := s.Sign(d); err != nil {
			return nil, err
		}
		return d, nil
	}
	return r
}
