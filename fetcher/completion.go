package fetcher

import (
	"github.com/Fantom-foundation/segpipe/packet"
)

// IsComplete reports whether the retrieval needs no more requests after d,
// the data of segment seg, arrived. sent is the number of distinct segments
// requested so far, target is the wanted number of segments or 0.
func IsComplete(d *packet.Data, seg, sent, target uint64) bool {
	if target != 0 && sent == target {
		return true
	}
	final, ok := d.FinalSegment()
	return ok && final == seg
}
