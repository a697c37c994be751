// Package name implements hierarchical names made of opaque components, with the
// segment-number naming convention used to address pieces of one object.
package name

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/common/bigendian"
)

// SegmentMarker is the first byte of a segment-number component.
const SegmentMarker byte = 0x00

var (
	// ErrNotSegment is returned when a component does not carry a segment number.
	ErrNotSegment = errors.New("component is not a segment number")
	// ErrEmptyName is returned when a segment is requested from an empty name.
	ErrEmptyName = errors.New("empty name")
)

// Component is a single opaque name component.
type Component []byte

// Name is an ordered sequence of components.
type Name []Component

// SegmentComponent builds the marked component for segment seg.
func SegmentComponent(seg uint64) Component {
	b := bigendian.NonNegativeIntegerToBytes(seg)
	c := make(Component, 0, 1+len(b))
	c = append(c, SegmentMarker)
	return append(c, b...)
}

// IsSegment reports whether c looks like a segment-number component.
func (c Component) IsSegment() bool {
	switch len(c) {
	case 2, 3, 5, 9:
		return c[0] == SegmentMarker
	}
	return false
}

// ToSegment decodes a segment-number component.
func (c Component) ToSegment() (uint64, error) {
	if !c.IsSegment() {
		return 0, ErrNotSegment
	}
	return bigendian.BytesToNonNegativeInteger(c[1:])
}

// Equal compares components bytewise.
func (c Component) Equal(b Component) bool {
	return string(c) == string(b)
}

// String returns the URI form of the component.
func (c Component) String() string {
	var sb strings.Builder
	escapeComponent(&sb, c)
	return sb.String()
}

// Append returns a copy of n with the components appended.
func (n Name) Append(cc ...Component) Name {
	res := make(Name, 0, len(n)+len(cc))
	res = append(res, n...)
	return append(res, cc...)
}

// AppendSegment returns a copy of n with a segment component for seg appended.
func (n Name) AppendSegment(seg uint64) Name {
	return n.Append(SegmentComponent(seg))
}

// Segment decodes the last component as a segment number.
func (n Name) Segment() (uint64, error) {
	if len(n) == 0 {
		return 0, ErrEmptyName
	}
	return n[len(n)-1].ToSegment()
}

// Prefix returns the first i components. Negative i drops components from the end.
func (n Name) Prefix(i int) Name {
	if i < 0 {
		i += len(n)
	}
	if i < 0 {
		i = 0
	}
	if i > len(n) {
		i = len(n)
	}
	return n[:i]
}

// IsPrefixOf reports whether every component of n matches the head of other.
func (n Name) IsPrefixOf(other Name) bool {
	if len(n) > len(other) {
		return false
	}
	for i, c := range n {
		if !c.Equal(other[i]) {
			return false
		}
	}
	return true
}

// Equal compares two names component by component.
func (n Name) Equal(other Name) bool {
	return len(n) == len(other) && n.IsPrefixOf(other)
}

// String returns the URI form of the name, "/" for the empty name.
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, c := range n {
		sb.WriteByte('/')
		escapeComponent(&sb, c)
	}
	return sb.String()
}

// Key returns a string usable as a map key for the exact name.
func (n Name) Key() string {
	return n.String()
}
