package segment

import (
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/segpipe/name"
)

// FromBytes splits payload into chunks of size bytes. It returns the number
// of segments and a ContentFunc serving them. Empty payload still makes one
// (empty) segment.
func FromBytes(payload []byte, size int) (uint64, ContentFunc, error) {
	if size < 1 {
		return 0, nil, errors.Errorf("invalid segment size %d", size)
	}
	count := uint64((len(payload) + size - 1) / size)
	if count == 0 {
		count = 1
	}
	content := func(_ name.Name, seg uint64) []byte {
		from := seg * uint64(size)
		if from >= uint64(len(payload)) {
			return []byte{}
		}
		to := from + uint64(size)
		if to > uint64(len(payload)) {
			to = uint64(len(payload))
		}
		return payload[from:to]
	}
	return count, content, nil
}
