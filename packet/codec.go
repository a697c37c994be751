package packet

import (
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/name"
)

// Type tags the first byte of an encoded packet.
type Type byte

const (
	InterestType Type = 0x05
	DataType     Type = 0x06
)

var (
	// ErrUnknownType is returned when decoding a packet with an unknown type tag.
	ErrUnknownType = errors.New("unknown packet type")
	// ErrEmpty is returned when decoding an empty buffer.
	ErrEmpty = errors.New("empty packet")
)

type interestRLP struct {
	Name        []name.Component
	LifetimeMs  uint64
	MustBeFresh bool
	Nonce       uint32
}

type signedRLP struct {
	Name         []name.Component
	Content      []byte
	FreshnessMs  uint64
	FinalBlockID []byte
}

type dataRLP struct {
	Signed     signedRLP
	KeyLocator []byte
	SigValue   []byte
}

func (d *Data) signedRLP() signedRLP {
	return signedRLP{
		Name:         d.Name,
		Content:      d.Content,
		FreshnessMs:  uint64(d.MetaInfo.FreshnessPeriod / time.Millisecond),
		FinalBlockID: d.MetaInfo.FinalBlockID,
	}
}

// SignedPortion returns the bytes covered by the signature.
func (d *Data) SignedPortion() ([]byte, error) {
	return rlp.EncodeToBytes(d.signedRLP())
}

// EncodeInterest returns the wire form of the interest.
func EncodeInterest(i *Interest) ([]byte, error) {
	body, err := rlp.EncodeToBytes(interestRLP{
		Name:        i.Name,
		LifetimeMs:  uint64(i.Lifetime / time.Millisecond),
		MustBeFresh: i.MustBeFresh,
		Nonce:       i.Nonce,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode interest")
	}
	return append([]byte{byte(InterestType)}, body...), nil
}

// EncodeData returns the wire form of the data.
func EncodeData(d *Data) ([]byte, error) {
	body, err := rlp.EncodeToBytes(dataRLP{
		Signed:     d.signedRLP(),
		KeyLocator: d.Signature.KeyLocator,
		SigValue:   d.Signature.Value,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode data")
	}
	return append([]byte{byte(DataType)}, body...), nil
}

// PeekType returns the type tag of an encoded packet.
func PeekType(wire []byte) (Type, error) {
	if len(wire) == 0 {
		return 0, ErrEmpty
	}
	t := Type(wire[0])
	if t != InterestType && t != DataType {
		return 0, ErrUnknownType
	}
	return t, nil
}

// DecodeInterest parses an encoded interest.
func DecodeInterest(wire []byte) (*Interest, error) {
	t, err := PeekType(wire)
	if err != nil {
		return nil, err
	}
	if t != InterestType {
		return nil, ErrUnknownType
	}
	var r interestRLP
	if err := rlp.DecodeBytes(wire[1:], &r); err != nil {
		return nil, errors.Wrap(err, "decode interest")
	}
	return &Interest{
		Name:        r.Name,
		Lifetime:    time.Duration(r.LifetimeMs) * time.Millisecond,
		MustBeFresh: r.MustBeFresh,
		Nonce:       r.Nonce,
	}, nil
}

// DecodeData parses encoded data.
func DecodeData(wire []byte) (*Data, error) {
	t, err := PeekType(wire)
	if err != nil {
		return nil, err
	}
	if t != DataType {
		return nil, ErrUnknownType
	}
	var r dataRLP
	if err := rlp.DecodeBytes(wire[1:], &r); err != nil {
		return nil, errors.Wrap(err, "decode data")
	}
	return &Data{
		Name:    r.Signed.Name,
		Content: r.Signed.Content,
		MetaInfo: MetaInfo{
			FreshnessPeriod: time.Duration(r.Signed.FreshnessMs) * time.Millisecond,
			FinalBlockID:    r.Signed.FinalBlockID,
		},
		Signature: Signature{
			KeyLocator: r.KeyLocator,
			Value:      r.SigValue,
		},
	}, nil
}
