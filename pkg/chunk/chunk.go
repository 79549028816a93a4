// pkg/chunk/chunk.go

package chunk

import (
	"glacierlist/pkg/utils"
)

var logger = utils.GetLogger("glacier")

// Record is one element of a paged sequence. Fields are free-form; the
// paging layer only moves, counts and indexes records, it never looks
// inside them.
type Record map[string]interface{}

// Codec turns an ordered group of records into a byte blob and back.
// Decode(Encode(x)) must return x for every record the caller stores.
type Codec interface {
	Encode(recs []Record) ([]byte, error)
	Decode(data []byte) ([]Record, error)
}

// Store owns the on-disk state of one storage root. Chunk ordinals are
// dense and start at 0. The sequence that owns the store tracks how
// many chunks exist; Scan only helps to recover that count.
type Store interface {
	Load(ordinal int) ([]Record, error)
	Save(ordinal int, recs []Record) error
	DeleteAll() error
	Path(ordinal int) string
	Scan() (int, error)
}
