// Package codec encodes node snapshots for publishing.
package codec

import (
	"io"

	"nodereg/internal/domain"
)

// Decoder parses a snapshot from a given format
type Decoder interface {
	Parse(r io.Reader) (*domain.Snapshot, error)
	Format() string
}

// Encoder writes a snapshot in a given format. Equal snapshots must encode
// to identical bytes.
type Encoder interface {
	Export(snapshot *domain.Snapshot, w io.Writer) error
	Format() string
}
