package vdi

import (
	"bytes"
	"encoding/binary"

	"github.com/ydb-platform/vdi/internal/pkg/errors"
)

////////////////////////////////////////////////////////////////////////////////

// SectorSize is the unit of addressing on both the virtual and the physical
// side.
const SectorSize = 512

const (
	signature  = uint32(0xbeda107f)
	version1_1 = uint32(0x00010001)

	imageTypeDynamic = uint32(1)
	imageTypeStatic  = uint32(2)

	// Unallocated block map entries use this index. The value is the same
	// in either byte order.
	unallocated = uint32(0xffffffff)

	// The only supported block (cluster) size.
	defaultBlockSize = uint32(1 << 20)

	// Value written into the header_size field on create.
	declaredHeaderSize = uint32(0x180)

	// Byte offset of the signature field inside the header.
	signatureOffset = 64
)

// Identifying tag written into the text field of created images. The field
// is freeform and ignored on open.
const headerText = "<<< Virtual Disk Image >>>\n"

////////////////////////////////////////////////////////////////////////////////

// Header mirrors the on-disk header layout. All multi-byte fields are stored
// little-endian on disk; marshalHeader/unmarshalHeader convert at the I/O
// boundary, so in-memory code always sees host values.
type Header struct {
	Text            [64]byte
	Signature       uint32
	Version         uint32
	HeaderSize      uint32
	ImageType       uint32
	ImageFlags      uint32
	Description     [256]byte
	OffsetBlockmap  uint32
	OffsetData      uint32
	Cylinders       uint32
	Heads           uint32
	Sectors         uint32
	SectorSize      uint32
	Unused1         uint32
	DiskSize        uint64
	BlockSize       uint32
	BlockExtra      uint32
	BlocksInImage   uint32
	BlocksAllocated uint32
	UUIDImage       [16]byte
	UUIDLastSnap    [16]byte
	UUIDLink        [16]byte
	UUIDParent      [16]byte
	Unused2         [7]uint64
}

////////////////////////////////////////////////////////////////////////////////

// marshalHeader encodes the header into one little-endian sector.
func marshalHeader(header *Header) [SectorSize]byte {
	var buffer bytes.Buffer
	// Cannot fail: the struct has fixed size and the buffer grows as
	// needed.
	_ = binary.Write(&buffer, binary.LittleEndian, header)

	var sector [SectorSize]byte
	copy(sector[:], buffer.Bytes())
	return sector
}

func unmarshalHeader(data []byte) (Header, error) {
	var header Header
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header)
	if err != nil {
		return Header{}, errors.NewUnsupportedFormatError(err)
	}

	return header, nil
}

////////////////////////////////////////////////////////////////////////////////

func (h *Header) validate() error {
	if h.Signature != signature {
		return errors.NewUnsupportedFormatErrorf(
			"invalid signature: expected %#x, actual %#x",
			signature,
			h.Signature,
		)
	}

	if h.Version != version1_1 {
		return errors.NewUnsupportedFormatErrorf(
			"unsupported version %v.%v",
			h.Version>>16,
			h.Version&0xffff,
		)
	}

	if h.ImageType != imageTypeDynamic && h.ImageType != imageTypeStatic {
		return errors.NewUnsupportedFormatErrorf(
			"unsupported image type %v",
			h.ImageType,
		)
	}

	if h.OffsetBlockmap%SectorSize != 0 {
		return errors.NewUnsupportedFormatErrorf(
			"unsupported block map offset %#x",
			h.OffsetBlockmap,
		)
	}

	if h.OffsetData%SectorSize != 0 {
		return errors.NewUnsupportedFormatErrorf(
			"unsupported data offset %#x",
			h.OffsetData,
		)
	}

	if h.SectorSize != SectorSize {
		return errors.NewUnsupportedFormatErrorf(
			"unsupported sector size %v",
			h.SectorSize,
		)
	}

	if h.BlockSize != defaultBlockSize {
		return errors.NewUnsupportedFormatErrorf(
			"unsupported block size %v",
			h.BlockSize,
		)
	}

	if h.DiskSize != uint64(h.BlocksInImage)*uint64(h.BlockSize) {
		return errors.NewUnsupportedFormatErrorf(
			"disk size %v does not match %v blocks of %v bytes",
			h.DiskSize,
			h.BlocksInImage,
			h.BlockSize,
		)
	}

	return nil
}

////////////////////////////////////////////////////////////////////////////////

// TextString returns the text tag without trailing NUL padding.
func (h *Header) TextString() string {
	return string(bytes.TrimRight(h.Text[:], "\x00"))
}

// DescriptionString returns the description without trailing NUL padding.
func (h *Header) DescriptionString() string {
	return string(bytes.TrimRight(h.Description[:], "\x00"))
}

////////////////////////////////////////////////////////////////////////////////

// Probe returns 100 iff buf is long enough to contain the signature field
// and the field decodes to the VDI signature; 0 otherwise.
func Probe(buf []byte) int {
	if len(buf) < signatureOffset+4 {
		return 0
	}

	if binary.LittleEndian.Uint32(buf[signatureOffset:]) == signature {
		return 100
	}

	return 0
}
