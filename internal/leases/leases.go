package leases

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/metal-stack/netstatus/internal/failure"
)

// FilterActive returns the leases which have not yet expired at now, in source order.
func (l Leases) FilterActive(now time.Time) Leases {
	active := Leases{}
	for _, lease := range l {
		if !lease.IsActive(now) {
			continue
		}
		active = append(active, lease)
	}
	return active
}

// ReadLeases opens and parses the given lease database.
func ReadLeases(filename string) (Leases, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open lease file %q: %w: %w", filename, failure.ErrSourceUnavailable, err)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)
	return Parse(file)
}

// FileSource reads the lease database from disk on every call, nothing is cached.
type FileSource struct {
	Path string
}

func (f FileSource) Leases(ctx context.Context) (Leases, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadLeases(f.Path)
}
