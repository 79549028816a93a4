// pkg/glacier/iterator.go

package glacier

import "glacierlist/pkg/chunk"

// Iterator walks a List in index order, decoding one chunk at a time.
// It is single-pass: create a new one to walk again (each pass re-reads
// from disk). A failed Next stops the pass; check Err afterwards.
type Iterator struct {
	list *List
	next int
	buf  []Record
	base int // ordinal held in buf, -1 when none
	cur  Record
	err  error
}

func (l *List) Iterator() *Iterator {
	return &Iterator{list: l, base: -1}
}

func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	l := it.list
	if it.next >= l.Len() {
		return false
	}
	loc, err := chunk.Resolve(it.next, l.Len(), l.conf.ChunkSize, l.chunks)
	if err != nil {
		it.err = err
		return false
	}
	if loc.Tail {
		it.cur = l.tail[loc.Offset]
	} else {
		if it.base != loc.Ordinal {
			recs, err := l.store.Load(loc.Ordinal)
			if err != nil {
				it.err = err
				return false
			}
			it.buf = recs
			it.base = loc.Ordinal
		}
		it.cur = it.buf[loc.Offset]
	}
	it.next++
	return true
}

// Record returns the record positioned by the last successful Next.
func (it *Iterator) Record() Record { return it.cur }

func (it *Iterator) Err() error { return it.err }
