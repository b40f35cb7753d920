package vdi

import (
	"context"

	"github.com/ydb-platform/vdi/internal/pkg/blockdev"
	"github.com/ydb-platform/vdi/internal/pkg/errors"
	"github.com/ydb-platform/vdi/internal/pkg/logging"
	"github.com/ydb-platform/vdi/internal/pkg/monitoring/metrics"
)

////////////////////////////////////////////////////////////////////////////////

type ImageOptions struct {
	// Loop delivers asynchronous completions. Optional; without it only the
	// synchronous operations are available.
	Loop *blockdev.CompletionLoop

	// Metrics defaults to the empty registry.
	Metrics metrics.Registry
}

// Image is an open VDI virtual disk. The header and the block map are
// resident in memory for the lifetime of the image and mutated only by the
// block allocator.
type Image struct {
	dev  blockdev.Device
	loop *blockdev.CompletionLoop

	header       Header
	blockMap     *blockMap
	blockSize    uint32
	blockSectors uint32
	totalSectors uint64

	allocations metrics.Counter
}

////////////////////////////////////////////////////////////////////////////////

// Open opens the backing file, validates the header and loads the block map
// cache. On any validation failure the backing file is closed and an
// UnsupportedFormatError is returned.
func Open(
	ctx context.Context,
	path string,
	flags int,
	options ImageOptions,
) (*Image, error) {

	registry := options.Metrics
	if registry == nil {
		registry = metrics.NewEmptyRegistry()
	}

	dev, err := blockdev.NewFileDevice(path, flags, options.Loop, registry)
	if err != nil {
		return nil, err
	}

	image, err := newImage(ctx, dev, options.Loop, registry)
	if err != nil {
		closeErr := dev.Close(ctx)
		if closeErr != nil {
			logging.Warn(ctx, "failed to close backing file: %v", closeErr)
		}

		return nil, err
	}

	return image, nil
}

func newImage(
	ctx context.Context,
	dev blockdev.Device,
	loop *blockdev.CompletionLoop,
	registry metrics.Registry,
) (*Image, error) {

	headerSector := make([]byte, SectorSize)
	err := dev.ReadSectors(ctx, 0, headerSector)
	if err != nil {
		return nil, errors.NewReadError(err)
	}

	header, err := unmarshalHeader(headerSector)
	if err != nil {
		return nil, err
	}

	err = header.validate()
	if err != nil {
		logging.Warn(ctx, "header validation failed: %v", err)
		return nil, err
	}

	image := &Image{
		dev:          dev,
		loop:         loop,
		header:       header,
		blockMap:     newBlockMap(header.BlocksInImage),
		blockSize:    header.BlockSize,
		blockSectors: header.BlockSize / SectorSize,
		totalSectors: header.DiskSize / SectorSize,
		allocations:  registry.Counter("vdi_allocated_blocks"),
	}

	err = dev.ReadSectors(
		ctx,
		uint64(header.OffsetBlockmap)/SectorSize,
		image.blockMap.bytes(),
	)
	if err != nil {
		return nil, errors.NewReadError(err)
	}

	logging.Debug(
		ctx,
		"opened image %q: %v blocks, %v allocated",
		header.TextString(),
		header.BlocksInImage,
		header.BlocksAllocated,
	)

	return image, nil
}

////////////////////////////////////////////////////////////////////////////////

// TotalSectors returns the virtual disk size in sectors.
func (image *Image) TotalSectors() uint64 {
	return image.totalSectors
}

// Header returns a copy of the in-memory header.
func (image *Image) Header() Header {
	return image.header
}

// Close releases the block map cache and closes the backing file.
func (image *Image) Close(ctx context.Context) error {
	image.blockMap = nil
	return image.dev.Close(ctx)
}

// Flush delegates to the backing file.
func (image *Image) Flush(ctx context.Context) error {
	return image.dev.Flush(ctx)
}

// MakeEmpty is not implemented and intentionally reports success.
func (image *Image) MakeEmpty(ctx context.Context) error {
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// Check audits the block map against the header and returns the number of
// consistency violations. The image is not modified.
func (image *Image) Check(ctx context.Context) int {
	errorCount := 0
	allocated := uint32(0)

	for block := uint32(0); block < image.header.BlocksInImage; block++ {
		entry := image.blockMap.entry(block)
		if entry == unallocated {
			continue
		}

		if entry < image.header.BlocksInImage {
			allocated++
		} else {
			logging.Error(
				ctx,
				"block %v maps to physical index %v which is out of range",
				block,
				entry,
			)
			errorCount++
		}
	}

	if allocated != image.header.BlocksAllocated {
		logging.Error(
			ctx,
			"allocated block count mismatch: block map has %v, header says %v",
			allocated,
			image.header.BlocksAllocated,
		)
		errorCount++
	}

	return errorCount
}
