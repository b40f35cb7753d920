package blockdev

import (
	"testing"

	"github.com/stretchr/testify/require"
)

////////////////////////////////////////////////////////////////////////////////

func TestIOVectorSize(t *testing.T) {
	require.Zero(t, NewIOVector().Size())
	require.EqualValues(t, 512, NewIOVector(make([]byte, 512)).Size())
	require.EqualValues(
		t,
		1536,
		NewIOVector(make([]byte, 512), make([]byte, 1024)).Size(),
	)
}

func TestIOVectorIsContiguous(t *testing.T) {
	require.True(t, NewIOVector(make([]byte, 512)).IsContiguous())
	require.False(
		t,
		NewIOVector(make([]byte, 512), make([]byte, 512)).IsContiguous(),
	)
}

func TestIOVectorCopyRoundTrip(t *testing.T) {
	vec := NewIOVector(
		[]byte{1, 2, 3},
		[]byte{4, 5},
		[]byte{6},
	)

	gathered := make([]byte, vec.Size())
	vec.CopyTo(gathered)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, gathered)

	vec.CopyFrom([]byte{9, 8, 7, 6, 5, 4})
	require.Equal(t, []byte{9, 8, 7}, vec.Buffers[0])
	require.Equal(t, []byte{6, 5}, vec.Buffers[1])
	require.Equal(t, []byte{4}, vec.Buffers[2])
}
