package bigendian

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNonNegativeIntegerLength(t *testing.T) {
	for n, expLen := range map[uint64]int{
		0:          1,
		0xff:       1,
		0x100:      2,
		0xffff:     2,
		0x10000:    4,
		0xffffffff: 4,
		1 << 32:    8,
	} {
		b := NonNegativeIntegerToBytes(n)
		require.Len(t, b, expLen, n)
		got, err := BytesToNonNegativeInteger(b)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestNonNegativeIntegerBadLength(t *testing.T) {
	_, err := BytesToNonNegativeInteger([]byte{1, 2, 3})
	require.Error(t, err)
	_, err = BytesToNonNegativeInteger(nil)
	require.Error(t, err)
}
