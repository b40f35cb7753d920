package vdi

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/ydb-platform/vdi/internal/pkg/errors"
	"github.com/ydb-platform/vdi/internal/pkg/logging"
)

////////////////////////////////////////////////////////////////////////////////

type CreateParams struct {
	// Virtual disk size in bytes. Sizes that are not a multiple of the
	// block size are truncated down to a whole number of blocks.
	Size uint64

	// Pre-allocate every block at create time.
	Static bool
}

// Create initialises a new image file: a header sector followed by an
// all-unallocated block map (identity-mapped and fully pre-allocated for
// static images).
func Create(ctx context.Context, path string, params CreateParams) error {
	if params.Size == 0 {
		return errors.NewInvalidArgumentErrorf("image size is required")
	}

	blocks := uint32(params.Size / uint64(defaultBlockSize))
	blockMapBytes := roundUpToSector(uint64(blocks) * blockMapEntrySize)
	offsetData := uint32(SectorSize + blockMapBytes)

	header := Header{
		Signature:      signature,
		Version:        version1_1,
		HeaderSize:     declaredHeaderSize,
		ImageType:      imageTypeDynamic,
		OffsetBlockmap: SectorSize,
		OffsetData:     offsetData,
		SectorSize:     SectorSize,
		DiskSize:       uint64(blocks) * uint64(defaultBlockSize),
		BlockSize:      defaultBlockSize,
		BlocksInImage:  blocks,
	}
	copy(header.Text[:], headerText)

	imageUUID := uuid.New()
	copy(header.UUIDImage[:], imageUUID[:])
	lastSnapUUID := uuid.New()
	copy(header.UUIDLastSnap[:], lastSnapUUID[:])

	if params.Static {
		header.ImageType = imageTypeStatic
		header.BlocksAllocated = blocks
	}

	blockMap := newBlockMap(blocks)
	for i := uint32(0); i < blocks; i++ {
		if params.Static {
			blockMap.setEntry(i, i)
		} else {
			blockMap.setEntry(i, unallocated)
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	headerSector := marshalHeader(&header)
	_, err = file.Write(headerSector[:])
	if err != nil {
		return errors.NewWriteError(err)
	}

	_, err = file.Write(blockMap.bytes())
	if err != nil {
		return errors.NewWriteError(err)
	}

	if params.Static {
		// Extend the file over the whole pre-allocated data area.
		err = file.Truncate(
			int64(offsetData) + int64(blocks)*int64(defaultBlockSize),
		)
		if err != nil {
			return errors.NewWriteError(err)
		}
	}

	logging.Debug(
		ctx,
		"created image %v: %v bytes, %v blocks, static=%v",
		path,
		header.DiskSize,
		blocks,
		params.Static,
	)

	return nil
}
