package vdi

////////////////////////////////////////////////////////////////////////////////

// segment is one contiguous piece of a request produced by the translator:
// either backed by a range of an existing physical block, or a hole whose
// reads yield zeros.
type segment struct {
	// First physical sector, valid only when allocated.
	physicalSector uint64
	nSectors       uint32
	blockIndex     uint32
	sectorInBlock  uint32
	allocated      bool
}

// translate maps the head of the virtual range [sectorNum, sectorNum +
// nbSectors) to its first segment. The segment never crosses a block
// boundary, so concatenating segments over any range yields exactly that
// range.
func (image *Image) translate(sectorNum uint64, nbSectors uint32) segment {
	blockIndex := uint32(sectorNum / uint64(image.blockSectors))
	sectorInBlock := uint32(sectorNum % uint64(image.blockSectors))

	nSectors := image.blockSectors - sectorInBlock
	if nSectors > nbSectors {
		nSectors = nbSectors
	}

	seg := segment{
		nSectors:      nSectors,
		blockIndex:    blockIndex,
		sectorInBlock: sectorInBlock,
	}

	entry := image.blockMap.entry(blockIndex)
	if entry != unallocated {
		seg.allocated = true
		seg.physicalSector = uint64(image.header.OffsetData)/SectorSize +
			uint64(entry)*uint64(image.blockSectors) +
			uint64(sectorInBlock)
	}

	return seg
}

////////////////////////////////////////////////////////////////////////////////

// IsAllocated reports how many consecutive sectors starting at sectorNum
// (capped by nbSectors) share allocation status, and what that status is.
// Callers re-query for the range beyond the returned count.
func (image *Image) IsAllocated(
	sectorNum uint64,
	nbSectors uint32,
) (uint32, bool) {

	seg := image.translate(sectorNum, nbSectors)
	return seg.nSectors, seg.allocated
}
