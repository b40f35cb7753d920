package blockdev

import (
	"context"
	"os"

	"github.com/ydb-platform/vdi/internal/pkg/monitoring/metrics"
)

////////////////////////////////////////////////////////////////////////////////

// FileDevice is a Device backed by a regular file. Synchronous operations
// block the caller; asynchronous submissions run on the completion loop,
// which also delivers their callbacks, so all completions for one device are
// serialised.
type FileDevice struct {
	file *os.File
	loop *CompletionLoop

	sectorsRead    metrics.Counter
	sectorsWritten metrics.Counter
}

func NewFileDevice(
	path string,
	flags int,
	loop *CompletionLoop,
	registry metrics.Registry,
) (*FileDevice, error) {

	if registry == nil {
		registry = metrics.NewEmptyRegistry()
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}

	return &FileDevice{
		file:           file,
		loop:           loop,
		sectorsRead:    registry.Counter("blockdev_sectors_read"),
		sectorsWritten: registry.Counter("blockdev_sectors_written"),
	}, nil
}

////////////////////////////////////////////////////////////////////////////////

func (d *FileDevice) ReadSectors(
	ctx context.Context,
	sectorNum uint64,
	buf []byte,
) error {

	_, err := d.file.ReadAt(buf, int64(sectorNum)*SectorSize)
	if err != nil {
		return err
	}

	d.sectorsRead.Add(int64(len(buf) / SectorSize))
	return nil
}

func (d *FileDevice) WriteSectors(
	ctx context.Context,
	sectorNum uint64,
	buf []byte,
) error {

	_, err := d.file.WriteAt(buf, int64(sectorNum)*SectorSize)
	if err != nil {
		return err
	}

	d.sectorsWritten.Add(int64(len(buf) / SectorSize))
	return nil
}

func (d *FileDevice) SubmitReadv(
	ctx context.Context,
	sectorNum uint64,
	vec IOVector,
	nSectors uint32,
	cb CompletionFunc,
) *AIORequest {

	if d.loop == nil || vec.Size() != uint64(nSectors)*SectorSize {
		return nil
	}

	d.loop.Schedule(func() {
		cb(d.readv(ctx, sectorNum, vec))
	})

	return &AIORequest{}
}

func (d *FileDevice) SubmitWritev(
	ctx context.Context,
	sectorNum uint64,
	vec IOVector,
	nSectors uint32,
	cb CompletionFunc,
) *AIORequest {

	if d.loop == nil || vec.Size() != uint64(nSectors)*SectorSize {
		return nil
	}

	d.loop.Schedule(func() {
		cb(d.writev(ctx, sectorNum, vec))
	})

	return &AIORequest{}
}

func (d *FileDevice) Flush(ctx context.Context) error {
	return d.file.Sync()
}

func (d *FileDevice) Length(ctx context.Context) (uint64, error) {
	info, err := d.file.Stat()
	if err != nil {
		return 0, err
	}

	return uint64(info.Size()), nil
}

func (d *FileDevice) Close(ctx context.Context) error {
	return d.file.Close()
}

////////////////////////////////////////////////////////////////////////////////

func (d *FileDevice) readv(
	ctx context.Context,
	sectorNum uint64,
	vec IOVector,
) error {

	offset := sectorNum
	for _, buffer := range vec.Buffers {
		err := d.ReadSectors(ctx, offset, buffer)
		if err != nil {
			return err
		}

		offset += uint64(len(buffer) / SectorSize)
	}

	return nil
}

func (d *FileDevice) writev(
	ctx context.Context,
	sectorNum uint64,
	vec IOVector,
) error {

	offset := sectorNum
	for _, buffer := range vec.Buffers {
		err := d.WriteSectors(ctx, offset, buffer)
		if err != nil {
			return err
		}

		offset += uint64(len(buffer) / SectorSize)
	}

	return nil
}
