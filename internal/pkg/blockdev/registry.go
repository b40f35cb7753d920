package blockdev

import (
	"context"
	"sync"

	"github.com/ydb-platform/vdi/internal/pkg/errors"
)

////////////////////////////////////////////////////////////////////////////////

type CreateOptionType int

const (
	// Byte size value.
	CreateOptionSize CreateOptionType = iota
	// Boolean flag.
	CreateOptionFlag
)

// CreateOption declares one create-time option a driver accepts.
type CreateOption struct {
	Name string
	Type CreateOptionType
	Help string
}

////////////////////////////////////////////////////////////////////////////////

// Image is an open virtual disk exposed by a format driver.
type Image interface {
	TotalSectors() uint64

	Read(
		ctx context.Context,
		sectorNum uint64,
		nbSectors uint32,
		buf []byte,
	) error

	Write(
		ctx context.Context,
		sectorNum uint64,
		nbSectors uint32,
		buf []byte,
	) error

	SubmitReadv(
		ctx context.Context,
		sectorNum uint64,
		vec IOVector,
		nbSectors uint32,
		cb CompletionFunc,
	) *AIORequest

	SubmitWritev(
		ctx context.Context,
		sectorNum uint64,
		vec IOVector,
		nbSectors uint32,
		cb CompletionFunc,
	) *AIORequest

	// IsAllocated reports how many consecutive sectors starting at
	// sectorNum (capped by nbSectors) share allocation status, and what
	// that status is.
	IsAllocated(sectorNum uint64, nbSectors uint32) (uint32, bool)

	// Check audits the image's consistency and returns the number of
	// violations found.
	Check(ctx context.Context) int

	MakeEmpty(ctx context.Context) error

	Flush(ctx context.Context) error

	Close(ctx context.Context) error
}

////////////////////////////////////////////////////////////////////////////////

// Driver implements one image format.
type Driver interface {
	FormatName() string

	// Probe inspects the head of a candidate file and returns a match
	// score in [0, 100].
	Probe(buf []byte) int

	Open(ctx context.Context, path string, flags int) (Image, error)

	Create(ctx context.Context, path string, options map[string]string) error

	CreateOptions() []CreateOption
}

////////////////////////////////////////////////////////////////////////////////

type Registry struct {
	mutex   sync.Mutex
	drivers map[string]Driver
}

func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Driver),
	}
}

func (r *Registry) Register(driver Driver) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := driver.FormatName()
	if _, ok := r.drivers[name]; ok {
		return errors.NewInvalidArgumentErrorf(
			"driver %q is already registered",
			name,
		)
	}

	r.drivers[name] = driver
	return nil
}

func (r *Registry) Lookup(formatName string) (Driver, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	driver, ok := r.drivers[formatName]
	return driver, ok
}

// Probe returns the registered driver with the best score for buf, or nil
// if no driver matches.
func (r *Registry) Probe(buf []byte) (Driver, int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var best Driver
	bestScore := 0

	for _, driver := range r.drivers {
		score := driver.Probe(buf)
		if score > bestScore {
			best = driver
			bestScore = score
		}
	}

	return best, bestScore
}
