package blockdev

import (
	"context"
)

////////////////////////////////////////////////////////////////////////////////

// SectorSize is the addressing unit of every Device.
const SectorSize = 512

////////////////////////////////////////////////////////////////////////////////

// CompletionFunc receives the final status of an asynchronous submission.
// It is always invoked from the completion loop, never inline with the
// submit call.
type CompletionFunc func(err error)

// AIORequest is a handle for one in-flight asynchronous request.
type AIORequest struct{}

// Cancel is a no-op: the in-flight child I/O completes naturally and the
// completion callback is still delivered.
func (r *AIORequest) Cancel() {}

////////////////////////////////////////////////////////////////////////////////

// Device is the child block device the format drivers read and write their
// backing file through.
type Device interface {
	// ReadSectors fills buf starting at the given sector. len(buf) must be
	// a multiple of SectorSize.
	ReadSectors(ctx context.Context, sectorNum uint64, buf []byte) error

	// WriteSectors stores buf starting at the given sector. len(buf) must
	// be a multiple of SectorSize.
	WriteSectors(ctx context.Context, sectorNum uint64, buf []byte) error

	// SubmitReadv submits an asynchronous scatter read of nSectors sectors.
	// Returns nil if the request could not be submitted.
	SubmitReadv(
		ctx context.Context,
		sectorNum uint64,
		vec IOVector,
		nSectors uint32,
		cb CompletionFunc,
	) *AIORequest

	// SubmitWritev submits an asynchronous gather write of nSectors sectors.
	// Returns nil if the request could not be submitted.
	SubmitWritev(
		ctx context.Context,
		sectorNum uint64,
		vec IOVector,
		nSectors uint32,
		cb CompletionFunc,
	) *AIORequest

	Flush(ctx context.Context) error

	// Length returns the current byte length of the backing file.
	Length(ctx context.Context) (uint64, error)

	Close(ctx context.Context) error
}
