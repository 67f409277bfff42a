package store

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pierrec/lz4/v4"

	"github.com/mfkiwl/geo-backtracer/internal/btstatus"
)

// blockCacheSize is the size of the process-wide read cache sitting in
// front of both handles. fastcache is a single flat cache rather than a
// per-family one, so entries are namespaced by a one-byte family tag
// ahead of the raw key.
const blockCacheSize = 512 * 1024 * 1024

const (
	familyTimeline byte = 't'
	familyReverse  byte = 'r'
)

// Tuning carries the subset of engine knobs exposed through
// configuration. Zero values fall back to Pebble's own defaults.
type Tuning struct {
	MemTableSize               int
	MemTableStopWritesThreshold int
	MaxConcurrentCompactions   int
}

// Db owns the two Pebble handles backing the timeline and by-user tables,
// plus the shared read cache and compression wrapper sitting in front of
// both. A RocksDB-style column family per table is realized here as one
// pebble.DB per table, since Pebble has no multi-family-per-handle API
// (see DESIGN.md).
type Db struct {
	dir       string
	ownedTemp bool

	Timeline *pebble.DB
	Reverse  *pebble.DB

	cache *fastcache.Cache
}

// Open creates or opens the on-disk tables under dir. If dir is empty, a
// process-temporary directory is allocated and removed on Close — useful
// for tests and for a mixer, which holds no persisted state of its own
// but may still want a throwaway Db in tests.
func Open(dir string, tuning Tuning) (*Db, error) {
	ownedTemp := false
	if dir == "" {
		tmp, err := os.MkdirTemp("", "geo-backtracer-db-")
		if err != nil {
			return nil, btstatus.Wrap(btstatus.Internal, err, "allocate temp db directory")
		}
		dir = tmp
		ownedTemp = true
	}

	cache := fastcache.New(blockCacheSize)

	timeline, err := openFamily(filepath.Join(dir, "by-timeline"), TimelineComparer, tuning)
	if err != nil {
		cache.Reset()
		return nil, err
	}
	reverse, err := openFamily(filepath.Join(dir, "by-user"), ReverseComparer, tuning)
	if err != nil {
		timeline.Close()
		cache.Reset()
		return nil, err
	}

	return &Db{
		dir:       dir,
		ownedTemp: ownedTemp,
		Timeline:  timeline,
		Reverse:   reverse,
		cache:     cache,
	}, nil
}

func openFamily(path string, cmp *pebble.Comparer, tuning Tuning) (*pebble.DB, error) {
	opts := &pebble.Options{
		Comparer:     cmp,
		FS:           vfs.Default,
		MaxOpenFiles: -1,
	}
	if tuning.MemTableSize > 0 {
		opts.MemTableSize = uint64(tuning.MemTableSize)
	}
	if tuning.MemTableStopWritesThreshold > 0 {
		opts.MemTableStopWritesThreshold = tuning.MemTableStopWritesThreshold
	}
	if tuning.MaxConcurrentCompactions != 0 {
		n := tuning.MaxConcurrentCompactions
		opts.MaxConcurrentCompactions = func() int { return n }
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, btstatus.Wrap(btstatus.Internal, err, "open pebble db at "+path)
	}
	return db, nil
}

// Close releases both handles, the read cache, and (if Open allocated one)
// the temporary directory backing them.
func (d *Db) Close() error {
	var firstErr error
	if err := d.Timeline.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := d.Reverse.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	d.cache.Reset()
	if d.ownedTemp {
		if err := os.RemoveAll(d.dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return btstatus.Wrap(btstatus.Internal, firstErr, "close db")
	}
	return nil
}

func cacheKey(family byte, key []byte) []byte {
	buf := make([]byte, 0, len(key)+1)
	buf = append(buf, family)
	buf = append(buf, key...)
	return buf
}

// getCached fetches key from the cache, falling back to db and populating
// the cache with the compressed-on-disk representation's decompressed
// form. family namespaces entries between the two tables.
func (d *Db) getCached(db *pebble.DB, family byte, key []byte) ([]byte, error) {
	ck := cacheKey(family, key)
	if v, ok := d.cache.HasGet(nil, ck); ok {
		return v, nil
	}

	raw, closer, err := db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, err
		}
		return nil, btstatus.Wrap(btstatus.Internal, err, "db get")
	}
	defer closer.Close()

	value, err := Decompress(raw)
	if err != nil {
		return nil, err
	}
	d.cache.Set(ck, value)
	return value, nil
}

// GetTimelineValue fetches and decompresses a by-timeline row's value.
func (d *Db) GetTimelineValue(key []byte) ([]byte, error) {
	return d.getCached(d.Timeline, familyTimeline, key)
}

// GetReverseValue fetches and decompresses a by-user row's value.
func (d *Db) GetReverseValue(key []byte) ([]byte, error) {
	return d.getCached(d.Reverse, familyReverse, key)
}

// invalidate drops a cached entry, used after deletes so stale values
// don't survive a row's removal.
func (d *Db) invalidate(family byte, key []byte) {
	d.cache.Del(cacheKey(family, key))
}

// InvalidateTimeline drops a cached by-timeline entry.
func (d *Db) InvalidateTimeline(key []byte) { d.invalidate(familyTimeline, key) }

// InvalidateReverse drops a cached by-user entry.
func (d *Db) InvalidateReverse(key []byte) { d.invalidate(familyReverse, key) }

// PutTimeline writes a compressed value under key in the timeline table
// and invalidates any cached copy.
func (d *Db) PutTimeline(key, value []byte) error {
	if err := d.Timeline.Set(key, Compress(value), pebble.Sync); err != nil {
		return btstatus.Wrap(btstatus.Internal, err, "put timeline row")
	}
	d.InvalidateTimeline(key)
	return nil
}

// PutReverse writes a compressed value under key in the by-user table and
// invalidates any cached copy.
func (d *Db) PutReverse(key, value []byte) error {
	if err := d.Reverse.Set(key, Compress(value), pebble.Sync); err != nil {
		return btstatus.Wrap(btstatus.Internal, err, "put reverse row")
	}
	d.InvalidateReverse(key)
	return nil
}

// DeleteTimeline removes a row from the timeline table.
func (d *Db) DeleteTimeline(key []byte) error {
	if err := d.Timeline.Delete(key, pebble.Sync); err != nil {
		return btstatus.Wrap(btstatus.Internal, err, "delete timeline row")
	}
	d.InvalidateTimeline(key)
	return nil
}

// DeleteReverse removes a row from the by-user table.
func (d *Db) DeleteReverse(key []byte) error {
	if err := d.Reverse.Delete(key, pebble.Sync); err != nil {
		return btstatus.Wrap(btstatus.Internal, err, "delete reverse row")
	}
	d.InvalidateReverse(key)
	return nil
}

// TimelineIter opens an iterator over the timeline table.
func (d *Db) TimelineIter() (*pebble.Iterator, error) {
	it, err := d.Timeline.NewIter(nil)
	if err != nil {
		return nil, btstatus.Wrap(btstatus.Internal, err, "open timeline iterator")
	}
	return it, nil
}

// ReverseIter opens an iterator over the by-user table.
func (d *Db) ReverseIter() (*pebble.Iterator, error) {
	it, err := d.Reverse.NewIter(nil)
	if err != nil {
		return nil, btstatus.Wrap(btstatus.Internal, err, "open reverse iterator")
	}
	return it, nil
}

// Compress applies LZ4 block compression at the value-codec layer, since
// Pebble's own Compression option does not offer LZ4 in the version
// wired here.
func Compress(value []byte) []byte {
	out := make([]byte, lz4.CompressBlockBound(len(value)))
	var c lz4.Compressor
	n, err := c.CompressBlock(value, out)
	if err != nil || n == 0 {
		// Incompressible or too small to benefit; store raw with a sentinel
		// so decompress can tell the two cases apart.
		return append([]byte{0}, value...)
	}
	var scratch [binary.MaxVarintLen64]byte
	ln := binary.PutUvarint(scratch[:], uint64(len(value)))
	head := make([]byte, 0, 1+ln+n)
	head = append(head, 1)
	head = append(head, scratch[:ln]...)
	return append(head, out[:n]...)
}

func Decompress(stored []byte) ([]byte, error) {
	if len(stored) == 0 {
		return nil, btstatus.New(btstatus.Serialization, "empty stored value")
	}
	if stored[0] == 0 {
		return stored[1:], nil
	}
	rest := stored[1:]
	origLen, n := binary.Uvarint(rest)
	if n <= 0 {
		return nil, btstatus.New(btstatus.Serialization, "corrupt compressed value header")
	}
	out := make([]byte, int(origLen))
	written, err := lz4.UncompressBlock(rest[n:], out)
	if err != nil {
		return nil, btstatus.Wrap(btstatus.Serialization, err, "lz4 decompress")
	}
	return out[:written], nil
}
