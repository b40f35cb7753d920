package vdi

import (
	"context"

	"github.com/ydb-platform/vdi/internal/pkg/errors"
	"github.com/ydb-platform/vdi/internal/pkg/logging"
)

////////////////////////////////////////////////////////////////////////////////

func zeroFill(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

////////////////////////////////////////////////////////////////////////////////

// Read fills buf from the virtual range [sectorNum, sectorNum + nbSectors).
// Holes read as zeros. A range extending past the end of the virtual disk is
// truncated: the excess part of buf is left untouched.
func (image *Image) Read(
	ctx context.Context,
	sectorNum uint64,
	nbSectors uint32,
	buf []byte,
) error {

	if uint64(len(buf)) < uint64(nbSectors)*SectorSize {
		return errors.NewInvalidArgumentErrorf(
			"buffer of %v bytes is too small for %v sectors",
			len(buf),
			nbSectors,
		)
	}

	for nbSectors > 0 && sectorNum < image.totalSectors {
		seg := image.translate(sectorNum, nbSectors)
		data := buf[:uint64(seg.nSectors)*SectorSize]

		if seg.allocated {
			err := image.dev.ReadSectors(ctx, seg.physicalSector, data)
			if err != nil {
				return errors.NewReadError(err)
			}
		} else {
			// Block not allocated, return zeros.
			zeroFill(data)
		}

		buf = buf[len(data):]
		sectorNum += uint64(seg.nSectors)
		nbSectors -= seg.nSectors
	}

	return nil
}

////////////////////////////////////////////////////////////////////////////////

// Write stores buf into the virtual range [sectorNum, sectorNum +
// nbSectors). Writes into holes allocate a new block through the publish
// sequence; writes into mapped blocks update in place.
func (image *Image) Write(
	ctx context.Context,
	sectorNum uint64,
	nbSectors uint32,
	buf []byte,
) error {

	if uint64(len(buf)) < uint64(nbSectors)*SectorSize {
		return errors.NewInvalidArgumentErrorf(
			"buffer of %v bytes is too small for %v sectors",
			len(buf),
			nbSectors,
		)
	}

	for nbSectors > 0 && sectorNum < image.totalSectors {
		seg := image.translate(sectorNum, nbSectors)
		data := buf[:uint64(seg.nSectors)*SectorSize]

		if seg.allocated {
			// Write to existing block.
			err := image.dev.WriteSectors(ctx, seg.physicalSector, data)
			if err != nil {
				return errors.NewWriteError(err)
			}
		} else {
			err := image.allocateBlock(ctx, seg, data)
			if err != nil {
				return err
			}
		}

		buf = buf[len(data):]
		sectorNum += uint64(seg.nSectors)
		nbSectors -= seg.nSectors
	}

	return nil
}

////////////////////////////////////////////////////////////////////////////////

// allocateBlock backs the segment's virtual block with the next append slot
// and publishes it with three ordered writes: the zero-padded data block,
// then the map sector holding the new entry, then the header with the
// incremented allocated count. If the data write fails, nothing on disk
// references the block; if the map write fails, the block is orphaned but
// invisible; if the header write fails, Check later reports the count
// mismatch. Indices are never reused, so no data is lost in any of these
// states.
func (image *Image) allocateBlock(
	ctx context.Context,
	seg segment,
	data []byte,
) error {

	entry := image.header.BlocksAllocated
	image.blockMap.setEntry(seg.blockIndex, entry)
	image.header.BlocksAllocated++

	block := make([]byte, image.blockSize)
	copy(block[seg.sectorInBlock*SectorSize:], data)

	offset := uint64(image.header.OffsetData)/SectorSize +
		uint64(entry)*uint64(image.blockSectors)
	err := image.dev.WriteSectors(ctx, offset, block)
	if err != nil {
		return errors.NewWriteError(err)
	}

	err = image.writeBlockMapSector(ctx, seg.blockIndex)
	if err != nil {
		return err
	}

	err = image.writeHeader(ctx)
	if err != nil {
		return err
	}

	image.allocations.Inc()
	logging.Debug(
		ctx,
		"allocated physical block %v for virtual block %v",
		entry,
		seg.blockIndex,
	)

	return nil
}

// writeBlockMapSector persists the single map sector that holds the entry
// for the given virtual block. The sector covers a 128-entry group and is
// written in full from the in-memory map.
func (image *Image) writeBlockMapSector(
	ctx context.Context,
	blockIndex uint32,
) error {

	sector := uint64(image.header.OffsetBlockmap)/SectorSize +
		image.blockMap.sectorNumber(blockIndex)

	err := image.dev.WriteSectors(
		ctx,
		sector,
		image.blockMap.sectorSlice(blockIndex),
	)
	if err != nil {
		return errors.NewWriteError(err)
	}

	return nil
}

func (image *Image) writeHeader(ctx context.Context) error {
	sector := marshalHeader(&image.header)

	err := image.dev.WriteSectors(ctx, 0, sector[:])
	if err != nil {
		return errors.NewWriteError(err)
	}

	return nil
}
