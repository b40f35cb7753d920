package vdi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

////////////////////////////////////////////////////////////////////////////////

func TestBlockMapIsPaddedToWholeSectors(t *testing.T) {
	require.Len(t, newBlockMap(1).bytes(), SectorSize)
	require.Len(t, newBlockMap(128).bytes(), SectorSize)
	require.Len(t, newBlockMap(129).bytes(), 2*SectorSize)
	require.EqualValues(t, 2, newBlockMap(129).sectors())
}

func TestBlockMapEntriesAreLittleEndian(t *testing.T) {
	blockMap := newBlockMap(4)
	blockMap.setEntry(1, 0x11223344)

	require.Equal(
		t,
		[]byte{0x44, 0x33, 0x22, 0x11},
		blockMap.bytes()[4:8],
	)
	require.Equal(t, uint32(0x11223344), blockMap.entry(1))
}

func TestBlockMapSectorAddressing(t *testing.T) {
	blockMap := newBlockMap(300)
	blockMap.setEntry(127, 7)
	blockMap.setEntry(128, 8)

	require.EqualValues(t, 0, blockMap.sectorNumber(127))
	require.EqualValues(t, 1, blockMap.sectorNumber(128))

	first := blockMap.sectorSlice(127)
	second := blockMap.sectorSlice(128)
	require.Len(t, first, SectorSize)
	require.Len(t, second, SectorSize)

	// Entry 127 is the last one of the first sector, entry 128 the first
	// one of the second.
	require.Equal(t, []byte{7, 0, 0, 0}, first[SectorSize-4:])
	require.Equal(t, []byte{8, 0, 0, 0}, second[:4])
}
