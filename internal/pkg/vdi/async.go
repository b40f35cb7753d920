package vdi

import (
	"context"

	"github.com/ydb-platform/vdi/internal/pkg/blockdev"
	"github.com/ydb-platform/vdi/internal/pkg/errors"
)

////////////////////////////////////////////////////////////////////////////////

// The asynchronous path runs the same segment logic as the synchronous one,
// driven by completion callbacks. Publishing a freshly allocated block takes
// three serialised child writes; the phase tag records which of them the
// next completion belongs to.
type aioPhase int

const (
	// Between segments.
	phaseNormal aioPhase = iota
	// The data block has been written; the block map sector is next.
	phaseMustWriteBlockmap
	// The block map sector has been written; the header is next.
	phaseMustWriteHeader
	// All three writes of the publish sequence have completed.
	phaseHeaderWritten
)

// aioRequest is the control block of one in-flight request.
type aioRequest struct {
	image *Image
	ctx   context.Context

	// Virtual cursor.
	sectorNum uint64
	nbSectors uint32
	// Number of sectors in the segment currently in flight.
	nSectors uint32

	vec blockdev.IOVector
	// Contiguous view of the payload: the caller's single buffer, or the
	// bounce buffer for multi-vector payloads.
	buf    []byte
	bufPos int
	// Non-nil when the payload had to be bounced.
	bounce []byte

	// Staging buffer for a freshly allocated block; its first sector is
	// reused as scratch for the header write.
	blockBuffer []byte
	// Virtual block whose map entry is being published.
	blockmapEntry uint32

	phase   aioPhase
	isWrite bool

	cb    blockdev.CompletionFunc
	outer *blockdev.AIORequest
}

func (image *Image) newAIORequest(
	ctx context.Context,
	sectorNum uint64,
	vec blockdev.IOVector,
	nbSectors uint32,
	cb blockdev.CompletionFunc,
	isWrite bool,
) *aioRequest {

	acb := &aioRequest{
		image:         image,
		ctx:           ctx,
		sectorNum:     sectorNum,
		nbSectors:     nbSectors,
		vec:           vec,
		blockmapEntry: unallocated,
		phase:         phaseNormal,
		isWrite:       isWrite,
		cb:            cb,
		outer:         &blockdev.AIORequest{},
	}

	if vec.IsContiguous() {
		acb.buf = vec.Buffers[0]
	} else {
		acb.bounce = make([]byte, vec.Size())
		if isWrite {
			vec.CopyTo(acb.bounce)
		}
		acb.buf = acb.bounce
	}

	return acb
}

////////////////////////////////////////////////////////////////////////////////

// SubmitReadv starts an asynchronous read. The completion callback fires on
// the loop after all segments have completed. Returns nil if the request
// could not be set up.
func (image *Image) SubmitReadv(
	ctx context.Context,
	sectorNum uint64,
	vec blockdev.IOVector,
	nbSectors uint32,
	cb blockdev.CompletionFunc,
) *blockdev.AIORequest {

	if vec.Size() != uint64(nbSectors)*SectorSize {
		return nil
	}

	acb := image.newAIORequest(ctx, sectorNum, vec, nbSectors, cb, false)
	acb.readCompletion(nil)
	return acb.outer
}

// SubmitWritev starts an asynchronous write. Returns nil if the request
// could not be set up.
func (image *Image) SubmitWritev(
	ctx context.Context,
	sectorNum uint64,
	vec blockdev.IOVector,
	nbSectors uint32,
	cb blockdev.CompletionFunc,
) *blockdev.AIORequest {

	if vec.Size() != uint64(nbSectors)*SectorSize {
		return nil
	}

	acb := image.newAIORequest(ctx, sectorNum, vec, nbSectors, cb, true)
	acb.writeCompletion(nil)
	return acb.outer
}

////////////////////////////////////////////////////////////////////////////////

func (acb *aioRequest) finish(err error) {
	if acb.bounce != nil && !acb.isWrite {
		acb.vec.CopyFrom(acb.bounce)
	}

	acb.blockBuffer = nil
	acb.cb(err)
}

// readCompletion advances the cursor past the completed segment and either
// issues the next child read, zero-fills a hole, or finishes the request.
// Hole segments re-enter through the loop so that the outer completion is
// never delivered inline with submission.
func (acb *aioRequest) readCompletion(err error) {
	if err != nil {
		acb.finish(errors.NewReadError(err))
		return
	}

	image := acb.image

	acb.nbSectors -= acb.nSectors
	acb.sectorNum += uint64(acb.nSectors)
	acb.bufPos += int(acb.nSectors) * SectorSize

	if acb.nbSectors == 0 {
		acb.finish(nil)
		return
	}

	seg := image.translate(acb.sectorNum, acb.nbSectors)
	acb.nSectors = seg.nSectors
	data := acb.buf[acb.bufPos : acb.bufPos+int(seg.nSectors)*SectorSize]

	if !seg.allocated {
		// Block not allocated, return zeros, no need to wait.
		zeroFill(data)
		image.loop.Schedule(func() {
			acb.readCompletion(nil)
		})
		return
	}

	req := image.dev.SubmitReadv(
		acb.ctx,
		seg.physicalSector,
		blockdev.NewIOVector(data),
		seg.nSectors,
		acb.readCompletion,
	)
	if req == nil {
		acb.finish(errors.NewReadErrorf("failed to submit child read"))
	}
}

// writeCompletion drives both the plain write path and the three-step
// publish sequence, dispatching on the phase tag.
func (acb *aioRequest) writeCompletion(err error) {
	if err != nil {
		acb.finish(errors.NewWriteError(err))
		return
	}

	image := acb.image

	switch acb.phase {
	case phaseMustWriteBlockmap:
		// New block written, publish the modified map sector.
		acb.phase = phaseMustWriteHeader

		sector := uint64(image.header.OffsetBlockmap)/SectorSize +
			image.blockMap.sectorNumber(acb.blockmapEntry)

		req := image.dev.SubmitWritev(
			acb.ctx,
			sector,
			blockdev.NewIOVector(image.blockMap.sectorSlice(acb.blockmapEntry)),
			1,
			acb.writeCompletion,
		)
		if req == nil {
			acb.finish(errors.NewWriteErrorf("failed to submit map write"))
		}
		return

	case phaseMustWriteHeader:
		// Map sector written, publish the header with the new allocated
		// count.
		acb.phase = phaseHeaderWritten

		headerSector := marshalHeader(&image.header)
		copy(acb.blockBuffer[:SectorSize], headerSector[:])

		req := image.dev.SubmitWritev(
			acb.ctx,
			0,
			blockdev.NewIOVector(acb.blockBuffer[:SectorSize]),
			1,
			acb.writeCompletion,
		)
		if req == nil {
			acb.finish(errors.NewWriteErrorf("failed to submit header write"))
		}
		return

	case phaseHeaderWritten:
		acb.blockBuffer = nil
		acb.phase = phaseNormal
	}

	acb.nbSectors -= acb.nSectors
	acb.sectorNum += uint64(acb.nSectors)
	acb.bufPos += int(acb.nSectors) * SectorSize

	if acb.nbSectors == 0 {
		acb.finish(nil)
		return
	}

	seg := image.translate(acb.sectorNum, acb.nbSectors)
	acb.nSectors = seg.nSectors
	data := acb.buf[acb.bufPos : acb.bufPos+int(seg.nSectors)*SectorSize]

	if !seg.allocated {
		// Allocate a new block and write to it.
		entry := image.header.BlocksAllocated
		image.blockMap.setEntry(seg.blockIndex, entry)
		image.header.BlocksAllocated++
		image.allocations.Inc()

		block := make([]byte, image.blockSize)
		copy(block[seg.sectorInBlock*SectorSize:], data)
		acb.blockBuffer = block
		acb.blockmapEntry = seg.blockIndex
		acb.phase = phaseMustWriteBlockmap

		offset := uint64(image.header.OffsetData)/SectorSize +
			uint64(entry)*uint64(image.blockSectors)

		req := image.dev.SubmitWritev(
			acb.ctx,
			offset,
			blockdev.NewIOVector(block),
			image.blockSectors,
			acb.writeCompletion,
		)
		if req == nil {
			acb.finish(errors.NewWriteErrorf("failed to submit block write"))
		}
		return
	}

	req := image.dev.SubmitWritev(
		acb.ctx,
		seg.physicalSector,
		blockdev.NewIOVector(data),
		seg.nSectors,
		acb.writeCompletion,
	)
	if req == nil {
		acb.finish(errors.NewWriteErrorf("failed to submit child write"))
	}
}
