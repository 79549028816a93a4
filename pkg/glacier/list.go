// pkg/glacier/list.go

package glacier

import (
	"fmt"
	"sort"
	"sync"

	"glacierlist/pkg/chunk"
	"glacierlist/pkg/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var logger = utils.GetLogger("glacier")

// Record is what a List holds; see chunk.Record.
type Record = chunk.Record

var (
	ErrLengthMismatch = errors.New("replacement length does not match slice length")
	ErrReplaceType    = errors.New("replacement is not a record slice")
)

// Config controls a List. Dir and ChunkSize are required; everything
// else defaults to off.
type Config struct {
	Dir       string // storage root, created if missing
	ChunkSize int    // records per flushed chunk
	Compress  string // none, lz4 or zstd
	SecretKey string // passphrase for chunk encryption
	PutLimit  int64  // disk write throttle, bytes per second
	GetLimit  int64  // disk read throttle, bytes per second
	Workers   int    // workers used by Map, default 4
	Resume    bool   // pick up chunks already present under Dir
	Codec     chunk.Codec
}

// List is a sequence that spills full chunks of records to disk and
// keeps only the not-yet-full tail in memory. One goroutine owns a
// List; only Map fans work out, and only over disjoint chunk files.
type List struct {
	conf   *Config
	store  chunk.Store
	format *chunk.Format
	chunks int // flushed chunks on disk
	tail   []Record
}

// Open creates a List over conf.Dir. An empty root is formatted; a
// formatted root is checked against conf and, unless conf.Resume is
// set, must hold no chunk files.
func Open(conf *Config) (*List, error) {
	if conf.Dir == "" {
		return nil, errors.New("storage root is required")
	}
	if conf.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", conf.ChunkSize)
	}
	if conf.Compress == "" {
		conf.Compress = "none"
	}
	if conf.Codec == nil {
		conf.Codec = chunk.JSONCodec{}
	}
	store, err := chunk.NewFileStore(conf.Dir, conf.Codec, &chunk.StoreConfig{
		Compress:  conf.Compress,
		SecretKey: conf.SecretKey,
		PutLimit:  conf.PutLimit,
		GetLimit:  conf.GetLimit,
	})
	if err != nil {
		return nil, err
	}
	format, err := chunk.LoadFormat(conf.Dir)
	if err != nil {
		return nil, err
	}
	l := &List{conf: conf, store: store}
	if format == nil {
		found, err := store.Scan()
		if err != nil {
			return nil, err
		}
		if found > 0 {
			return nil, fmt.Errorf("storage root %s holds %d chunk files but no %s", conf.Dir, found, chunk.FormatFile)
		}
		format = &chunk.Format{
			UUID:        uuid.New().String(),
			ChunkSize:   conf.ChunkSize,
			Compression: conf.Compress,
			Encrypted:   conf.SecretKey != "",
			Version:     chunk.FormatVersion,
		}
		if err := chunk.StoreFormat(conf.Dir, format); err != nil {
			return nil, errors.Wrapf(err, "format storage root %s", conf.Dir)
		}
		logger.Debugf("formatted %s as %+v", conf.Dir, format)
	} else {
		if err := format.CheckConfig(conf.ChunkSize, conf.Compress, conf.SecretKey != ""); err != nil {
			return nil, errors.Wrapf(err, "open storage root %s", conf.Dir)
		}
		found, err := store.Scan()
		if err != nil {
			return nil, err
		}
		if found > 0 && !conf.Resume {
			return nil, fmt.Errorf("storage root %s is not empty (%d chunks); purge it or open with Resume", conf.Dir, found)
		}
		l.chunks = found
	}
	l.format = format
	return l, nil
}

// Len never touches disk.
func (l *List) Len() int {
	return l.chunks*l.conf.ChunkSize + len(l.tail)
}

// ChunkCount reports how many full chunks have been flushed.
func (l *List) ChunkCount() int { return l.chunks }

// TailLen reports how many records sit in memory awaiting a flush.
func (l *List) TailLen() int { return len(l.tail) }

// Format returns the manifest of the storage root.
func (l *List) Format() *chunk.Format { return l.format }

// Get returns the record at index; negative indices count from the
// end. Reading from a flushed chunk decodes that whole chunk.
func (l *List) Get(index int) (Record, error) {
	loc, err := chunk.Resolve(index, l.Len(), l.conf.ChunkSize, l.chunks)
	if err != nil {
		return nil, err
	}
	if loc.Tail {
		return l.tail[loc.Offset], nil
	}
	recs, err := l.store.Load(loc.Ordinal)
	if err != nil {
		return nil, err
	}
	return recs[loc.Offset], nil
}

// Set replaces the record at index. A flushed chunk is rewritten
// wholesale: load, replace one element, save.
func (l *List) Set(index int, value Record) error {
	loc, err := chunk.Resolve(index, l.Len(), l.conf.ChunkSize, l.chunks)
	if err != nil {
		return err
	}
	if loc.Tail {
		l.tail[loc.Offset] = value
		return nil
	}
	recs, err := l.store.Load(loc.Ordinal)
	if err != nil {
		return err
	}
	recs[loc.Offset] = value
	return l.store.Save(loc.Ordinal, recs)
}

// clampRange normalizes negative bounds and clamps both into
// [0, length], mirroring sequence slicing.
func clampRange(start, stop, length int) (int, int) {
	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	if start < 0 {
		start = 0
	}
	if stop > length {
		stop = length
	}
	if stop < start {
		stop = start
	}
	return start, stop
}

// Slice returns the records in [start, stop), visiting each covered
// chunk once in ascending order.
func (l *List) Slice(start, stop int) ([]Record, error) {
	start, stop = clampRange(start, stop, l.Len())
	out := make([]Record, 0, stop-start)
	if start >= stop {
		return out, nil
	}
	cs := l.conf.ChunkSize
	flushed := l.chunks * cs
	if start < flushed {
		first := start / cs
		last := (utils.Min(stop, flushed) - 1) / cs
		for k := first; k <= last; k++ {
			recs, err := l.store.Load(k)
			if err != nil {
				return nil, err
			}
			lo := 0
			if k == first {
				lo = start - k*cs
			}
			hi := utils.Min(cs, stop-k*cs)
			out = append(out, recs[lo:hi]...)
		}
	}
	if stop > flushed {
		lo := 0
		if start > flushed {
			lo = start - flushed
		}
		out = append(out, l.tail[lo:stop-flushed]...)
	}
	return out, nil
}

// SetSlice replaces the records in [start, stop). The replacement must
// be a []Record (or []map[string]interface{}) of exactly stop-start
// elements; covered chunks are rewritten one batched load/save each.
func (l *List) SetSlice(start, stop int, values interface{}) error {
	var recs []Record
	switch v := values.(type) {
	case []Record:
		recs = v
	case []map[string]interface{}:
		recs = make([]Record, len(v))
		for i, r := range v {
			recs[i] = r
		}
	default:
		return ErrReplaceType
	}
	start, stop = clampRange(start, stop, l.Len())
	if len(recs) != stop-start {
		return ErrLengthMismatch
	}
	if start == stop {
		return nil
	}
	cs := l.conf.ChunkSize
	flushed := l.chunks * cs
	i := start
	for i < stop && i < flushed {
		k := i / cs
		chunkRecs, err := l.store.Load(k)
		if err != nil {
			return err
		}
		lo := i - k*cs
		hi := utils.Min(cs, stop-k*cs)
		copy(chunkRecs[lo:hi], recs[i-start:])
		if err := l.store.Save(k, chunkRecs); err != nil {
			return err
		}
		i = k*cs + hi
	}
	for ; i < stop; i++ {
		l.tail[i-flushed] = recs[i-start]
	}
	return nil
}

// Append adds one record; reaching the chunk size flushes the tail to
// disk as the next chunk.
func (l *List) Append(value Record) error {
	l.tail = append(l.tail, value)
	if len(l.tail) >= l.conf.ChunkSize {
		return l.flush()
	}
	return nil
}

// Extend behaves like repeated Append but writes whole chunks straight
// from values instead of staging every record through the tail.
func (l *List) Extend(values []Record) error {
	cs := l.conf.ChunkSize
	if len(l.tail) > 0 {
		n := utils.Min(cs-len(l.tail), len(values))
		l.tail = append(l.tail, values[:n]...)
		values = values[n:]
		if len(l.tail) == cs {
			if err := l.flush(); err != nil {
				return err
			}
		}
	}
	for len(values) >= cs {
		if err := l.store.Save(l.chunks, values[:cs]); err != nil {
			return err
		}
		l.chunks++
		values = values[cs:]
	}
	l.tail = append(l.tail, values...)
	return nil
}

func (l *List) flush() error {
	if err := l.store.Save(l.chunks, l.tail); err != nil {
		return err
	}
	l.chunks++
	l.tail = l.tail[:0]
	return nil
}

// Map applies fn to every record in place, preserving order and count.
// Flushed chunks are rewritten by a bounded pool of workers, one chunk
// per task; the tail is transformed on the calling goroutine after all
// chunks succeed. The operation is not atomic: chunks rewritten before
// another chunk fails keep their new content, and the returned error
// names every failed ordinal.
func (l *List) Map(fn func(Record) Record) error {
	workers := l.conf.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > l.chunks {
		workers = l.chunks
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failed   []int
		firstErr error
	)
	todo := make(chan int)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range todo {
				if err := l.mapChunk(k, fn); err != nil {
					mu.Lock()
					failed = append(failed, k)
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for k := 0; k < l.chunks; k++ {
		todo <- k
	}
	close(todo)
	wg.Wait()

	if len(failed) > 0 {
		sort.Ints(failed)
		return errors.Wrapf(firstErr, "transform failed on chunks %v", failed)
	}
	for i, r := range l.tail {
		l.tail[i] = fn(r)
	}
	return nil
}

func (l *List) mapChunk(k int, fn func(Record) Record) error {
	recs, err := l.store.Load(k)
	if err != nil {
		return err
	}
	for i, r := range recs {
		recs[i] = fn(r)
	}
	return l.store.Save(k, recs)
}

// Combine materializes the whole sequence in memory. It defeats the
// point of paging and exists as an escape hatch for small lists.
func (l *List) Combine() ([]Record, error) {
	out := make([]Record, 0, l.Len())
	for k := 0; k < l.chunks; k++ {
		recs, err := l.store.Load(k)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return append(out, l.tail...), nil
}

// Purge deletes every flushed chunk file and resets the chunk count.
// Records still in the tail are kept; use Clear to drop those too.
// Purging an already empty root succeeds.
func (l *List) Purge() error {
	if err := l.store.DeleteAll(); err != nil {
		return err
	}
	l.chunks = 0
	return nil
}

// Clear is Purge plus dropping the in-memory tail.
func (l *List) Clear() error {
	if err := l.Purge(); err != nil {
		return err
	}
	l.tail = nil
	return nil
}
