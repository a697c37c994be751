// Package packet defines the request (Interest) and response (Data) packets and
// their wire encoding.
package packet

import (
	"math/rand"
	"time"

	"github.com/Fantom-foundation/segpipe/name"
)

const (
	// DefaultLifetime is how long a requester waits for a reply by default.
	DefaultLifetime = 4000 * time.Millisecond
	// DefaultFreshness is the default freshness period of produced data.
	DefaultFreshness = 3600 * 1000 * time.Millisecond
)

// Interest is a request for the Data with the given name.
type Interest struct {
	Name        name.Name
	Lifetime    time.Duration
	MustBeFresh bool
	Nonce       uint32
}

// NewInterest returns an interest with the default lifetime and a random nonce.
func NewInterest(n name.Name) *Interest {
	return &Interest{
		Name:        n,
		Lifetime:    DefaultLifetime,
		MustBeFresh: true,
		Nonce:       rand.Uint32(),
	}
}

// Renew returns a copy with a fresh nonce, for retransmission.
func (i *Interest) Renew() *Interest {
	cp := *i
	cp.Nonce = rand.Uint32()
	return &cp
}

// MetaInfo carries data freshness and the optional final segment marker.
type MetaInfo struct {
	FreshnessPeriod time.Duration
	// FinalBlockID is the segment component of the last segment. Empty if unknown.
	FinalBlockID name.Component
}

// Signature holds the producer key and the signature value over the signed portion.
type Signature struct {
	KeyLocator []byte
	Value      []byte
}

// Data is a named, signed response.
type Data struct {
	Name      name.Name
	Content   []byte
	MetaInfo  MetaInfo
	Signature Signature
}

// NewData returns unsigned data with the default freshness.
func NewData(n name.Name, content []byte) *Data {
	return &Data{
		Name:    n,
		Content: content,
		MetaInfo: MetaInfo{
			FreshnessPeriod: DefaultFreshness,
		},
	}
}

// FinalSegment decodes the final-segment marker.
func (d *Data) FinalSegment() (uint64, bool) {
	if len(d.MetaInfo.FinalBlockID) == 0 {
		return 0, false
	}
	seg, err := d.MetaInfo.FinalBlockID.ToSegment()
	if err != nil {
		return 0, false
	}
	return seg, true
}

// SetFinalSegment sets the final-segment marker.
func (d *Data) SetFinalSegment(seg uint64) {
	d.MetaInfo.FinalBlockID = name.SegmentComponent(seg)
}

// Satisfies reports whether d is an answer to i.
func (d *Data) Satisfies(i *Interest) bool {
	return i.Name.IsPrefixOf(d.Name)
}
