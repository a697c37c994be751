package fetcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/segpipe/packet"
)

func TestIsComplete(t *testing.T) {
	noFinal := packet.NewData(testPrefix.AppendSegment(2), nil)

	require.False(t, IsComplete(noFinal, 2, 3, 0))
	require.False(t, IsComplete(noFinal, 2, 3, 5))
	require.True(t, IsComplete(noFinal, 2, 5, 5))

	require.True(t, IsComplete(segData(4, 4), 4, 5, 0))
	require.False(t, IsComplete(segData(3, 4), 3, 5, 0))
	// a count reached first wins over a later final marker
	require.True(t, IsComplete(segData(1, 9), 1, 2, 2))
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3}
	require.True(t, p.Allow(1))
	require.True(t, p.Allow(3))
	require.False(t, p.Allow(4))

	require.False(t, RetryPolicy{}.Allow(1))
}
