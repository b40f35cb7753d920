package vdi

import (
	"context"
	"strconv"

	"github.com/ydb-platform/vdi/internal/pkg/blockdev"
	"github.com/ydb-platform/vdi/internal/pkg/errors"
	"github.com/ydb-platform/vdi/internal/pkg/monitoring/metrics"
)

////////////////////////////////////////////////////////////////////////////////

// FormatName is the name the driver registers under.
const FormatName = "vdi"

const (
	optionSize   = "size"
	optionStatic = "static"
)

////////////////////////////////////////////////////////////////////////////////

var _ blockdev.Image = (*Image)(nil)

type driver struct {
	loop    *blockdev.CompletionLoop
	metrics metrics.Registry
}

func NewDriver(
	loop *blockdev.CompletionLoop,
	registry metrics.Registry,
) blockdev.Driver {

	return &driver{
		loop:    loop,
		metrics: registry,
	}
}

////////////////////////////////////////////////////////////////////////////////

func (d *driver) FormatName() string {
	return FormatName
}

func (d *driver) Probe(buf []byte) int {
	return Probe(buf)
}

func (d *driver) Open(
	ctx context.Context,
	path string,
	flags int,
) (blockdev.Image, error) {

	return Open(ctx, path, flags, ImageOptions{
		Loop:    d.loop,
		Metrics: d.metrics,
	})
}

func (d *driver) Create(
	ctx context.Context,
	path string,
	options map[string]string,
) error {

	sizeValue, ok := options[optionSize]
	if !ok {
		return errors.NewInvalidArgumentErrorf(
			"create option %q is required",
			optionSize,
		)
	}

	size, err := strconv.ParseUint(sizeValue, 10, 64)
	if err != nil {
		return errors.NewInvalidArgumentErrorf(
			"invalid %q option value %q",
			optionSize,
			sizeValue,
		)
	}

	static := false
	if staticValue, ok := options[optionStatic]; ok {
		static, err = strconv.ParseBool(staticValue)
		if err != nil {
			return errors.NewInvalidArgumentErrorf(
				"invalid %q option value %q",
				optionStatic,
				staticValue,
			)
		}
	}

	return Create(ctx, path, CreateParams{
		Size:   size,
		Static: static,
	})
}

func (d *driver) CreateOptions() []blockdev.CreateOption {
	return []blockdev.CreateOption{
		{
			Name: optionSize,
			Type: blockdev.CreateOptionSize,
			Help: "virtual disk size in bytes",
		},
		{
			Name: optionStatic,
			Type: blockdev.CreateOptionFlag,
			Help: "pre-allocate all blocks at create time",
		},
	}
}
