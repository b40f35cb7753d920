package vdi

import (
	"encoding/binary"
)

////////////////////////////////////////////////////////////////////////////////

const (
	blockMapEntrySize = 4

	// Entries that share one on-disk sector of the block map.
	entriesPerSector = SectorSize / blockMapEntrySize
)

func roundUpToSector(size uint64) uint64 {
	return (size + SectorSize - 1) &^ (SectorSize - 1)
}

////////////////////////////////////////////////////////////////////////////////

// blockMap caches the on-disk indirection table. Entries are kept in
// little-endian byte order so that a map sector can be written back without
// conversion; all access goes through entry/setEntry. The raw buffer is
// padded to a whole number of sectors, matching the on-disk layout.
type blockMap struct {
	raw []byte
}

func newBlockMap(blocks uint32) *blockMap {
	return &blockMap{
		raw: make([]byte, roundUpToSector(uint64(blocks)*blockMapEntrySize)),
	}
}

func (m *blockMap) entry(index uint32) uint32 {
	return binary.LittleEndian.Uint32(m.raw[index*blockMapEntrySize:])
}

func (m *blockMap) setEntry(index uint32, value uint32) {
	binary.LittleEndian.PutUint32(m.raw[index*blockMapEntrySize:], value)
}

// sectorSlice returns the full 512-byte slice of the map that holds the
// entry for the given virtual block.
func (m *blockMap) sectorSlice(blockIndex uint32) []byte {
	start := (blockIndex / entriesPerSector) * SectorSize
	return m.raw[start : start+SectorSize]
}

// sectorNumber returns the index of the map sector that holds the entry for
// the given virtual block, relative to the start of the block map.
func (m *blockMap) sectorNumber(blockIndex uint32) uint64 {
	return uint64(blockIndex / entriesPerSector)
}

func (m *blockMap) bytes() []byte {
	return m.raw
}

func (m *blockMap) sectors() uint64 {
	return uint64(len(m.raw)) / SectorSize
}
