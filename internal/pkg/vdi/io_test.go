package vdi

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

////////////////////////////////////////////////////////////////////////////////

func TestFreshImageReadsAsZeros(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	testCases := []struct {
		name      string
		sectorNum uint64
		nbSectors uint32
	}{
		{"start", 0, 4},
		{"middleOfBlock", 1000, 8},
		{"crossingBlockBoundary", 2046, 4},
		{"lastSector", 4095, 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			buf := patternBuffer(0xee, testCase.nbSectors)
			err := image.Read(ctx, testCase.sectorNum, testCase.nbSectors, buf)
			require.NoError(t, err)
			require.Equal(
				t,
				make([]byte, uint64(testCase.nbSectors)*SectorSize),
				buf,
			)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	payload := patternBuffer(0xa5, 3)
	require.NoError(t, image.Write(ctx, 123, 3, payload))

	buf := patternBuffer(0xee, 3)
	require.NoError(t, image.Read(ctx, 123, 3, buf))
	require.Equal(t, payload, buf)

	// The rest of the allocated block reads as zeros.
	buf = patternBuffer(0xee, 1)
	require.NoError(t, image.Read(ctx, 200, 1, buf))
	require.Equal(t, make([]byte, SectorSize), buf)
}

func TestSecondWriteToSameBlockReusesMapping(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	require.NoError(t, image.Write(ctx, 0, 1, patternBuffer(0xaa, 1)))
	require.EqualValues(t, 1, image.Header().BlocksAllocated)
	require.EqualValues(t, 0, image.blockMap.entry(0))

	require.NoError(t, image.Write(ctx, 100, 1, patternBuffer(0xbb, 1)))
	require.EqualValues(t, 1, image.Header().BlocksAllocated)
	require.EqualValues(t, 0, image.blockMap.entry(0))

	require.Zero(t, image.Check(ctx))
}

////////////////////////////////////////////////////////////////////////////////

// First write allocates physical block 0 for virtual block 0; the image file
// grows by one block and carries the payload at the data offset.
func TestWriteAllocationLayout(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)

	require.NoError(t, image.Write(ctx, 0, 1, patternBuffer(0xaa, 1)))
	require.EqualValues(t, 1, image.Header().BlocksAllocated)
	require.EqualValues(t, 0, image.blockMap.entry(0))
	require.Equal(t, unallocated, image.blockMap.entry(1))
	require.Equal(t, uint64(1024)+MiB, fileLength(t, path))

	require.NoError(t, image.Write(ctx, 2048, 1, patternBuffer(0x55, 1)))
	require.EqualValues(t, 2, image.Header().BlocksAllocated)
	require.EqualValues(t, 1, image.blockMap.entry(1))
	require.Zero(t, image.Check(ctx))

	require.NoError(t, image.Close(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, int(uint64(1024)+2*MiB))

	// Virtual block 0 at data offset 1024: the written sector followed by
	// zeros up to the block size.
	require.Equal(t, patternBuffer(0xaa, 1), data[1024:1024+SectorSize])
	require.Equal(
		t,
		make([]byte, MiB-SectorSize),
		data[1024+SectorSize:1024+MiB],
	)

	// Virtual block 1 right after it.
	require.Equal(
		t,
		patternBuffer(0x55, 1),
		data[1024+MiB:1024+MiB+SectorSize],
	)
	require.Equal(
		t,
		make([]byte, MiB-SectorSize),
		data[1024+MiB+SectorSize:],
	)
}

// Closing and reopening must round-trip all written data and keep holes
// zero.
func TestReopenedImageKeepsWrites(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	require.NoError(t, image.Write(ctx, 0, 1, patternBuffer(0xaa, 1)))
	require.NoError(t, image.Write(ctx, 2048, 1, patternBuffer(0x55, 1)))
	require.NoError(t, image.Close(ctx))

	image = openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	buf := patternBuffer(0xee, 1)
	require.NoError(t, image.Read(ctx, 0, 1, buf))
	require.Equal(t, patternBuffer(0xaa, 1), buf)

	buf = patternBuffer(0xee, 1)
	require.NoError(t, image.Read(ctx, 2048, 1, buf))
	require.Equal(t, patternBuffer(0x55, 1), buf)

	// Unwritten sectors of the allocated block 0 read as zeros.
	buf = patternBuffer(0xee, 1)
	require.NoError(t, image.Read(ctx, 1024, 1, buf))
	require.Equal(t, make([]byte, SectorSize), buf)

	buf = patternBuffer(0xee, 1)
	require.NoError(t, image.Read(ctx, 1536, 1, buf))
	require.Equal(t, make([]byte, SectorSize), buf)

	require.Zero(t, image.Check(ctx))
}

////////////////////////////////////////////////////////////////////////////////

// A write crossing a block boundary into two holes allocates two blocks
// with consecutive physical indices.
func TestWriteCrossingBlockBoundary(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	payload := make([]byte, 2*SectorSize)
	for i := range payload[:SectorSize] {
		payload[i] = 0x11
	}
	for i := range payload[SectorSize:] {
		payload[SectorSize+i] = 0x22
	}

	require.NoError(t, image.Write(ctx, 2047, 2, payload))
	require.EqualValues(t, 2, image.Header().BlocksAllocated)
	require.EqualValues(t, 0, image.blockMap.entry(0))
	require.EqualValues(t, 1, image.blockMap.entry(1))
	require.Zero(t, image.Check(ctx))

	buf := make([]byte, 2*SectorSize)
	require.NoError(t, image.Read(ctx, 2047, 2, buf))
	require.Equal(t, payload, buf)
}

// Reading past the end of the virtual disk returns only the sectors that
// exist; the excess part of the buffer is left untouched.
func TestReadIsCappedByTotalSectors(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	require.NoError(t, image.Write(ctx, 4095, 1, patternBuffer(0xaa, 1)))

	buf := patternBuffer(0xee, 2)
	require.NoError(t, image.Read(ctx, 4095, 2, buf))
	require.Equal(t, patternBuffer(0xaa, 1), buf[:SectorSize])
	require.Equal(t, patternBuffer(0xee, 1), buf[SectorSize:])
}

func TestWriteIsCappedByTotalSectors(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	require.NoError(t, image.Write(ctx, 4095, 2, patternBuffer(0xaa, 2)))
	require.EqualValues(t, 1, image.Header().BlocksAllocated)
	require.Zero(t, image.Check(ctx))
}

////////////////////////////////////////////////////////////////////////////////

// An over-range map entry is one violation; the resulting allocated count
// mismatch is another.
func TestCheckDetectsCorruptedBlockMap(t *testing.T) {
	ctx := newContext()
	path := createTestImage(t, ctx, 2*MiB, false)

	image := openTestImage(t, ctx, path, nil)
	defer image.Close(ctx)

	require.NoError(t, image.Write(ctx, 0, 1, patternBuffer(0xaa, 1)))
	require.NoError(t, image.Write(ctx, 2048, 1, patternBuffer(0x55, 1)))
	require.Zero(t, image.Check(ctx))

	image.blockMap.setEntry(1, 0x10)
	require.Equal(t, 2, image.Check(ctx))
}
