// pkg/chunk/addr.go

package chunk

import "github.com/pkg/errors"

var ErrIndexRange = errors.New("index out of range")

// Location is the physical address of a record: either an offset into
// the in-memory tail, or (ordinal, offset) within a flushed chunk.
type Location struct {
	Tail    bool
	Ordinal int
	Offset  int
}

// Resolve maps a sequence index to its physical location. A negative
// index counts from the end. Resolve depends only on its arguments;
// there is no hidden state.
func Resolve(index, length, capacity, chunks int) (Location, error) {
	if index < 0 {
		index += length
	}
	if index < 0 || index >= length {
		return Location{}, ErrIndexRange
	}
	if flushed := chunks * capacity; index >= flushed {
		return Location{Tail: true, Offset: index - flushed}, nil
	}
	return Location{Ordinal: index / capacity, Offset: index % capacity}, nil
}
