// Package index owns one embedded key/value database per collection,
// exposing ordered scans, batched atomic writes, alias resolution, a
// replication change feed, and the id counters access rules and policies are
// allocated from.
package index

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	golog "github.com/ipfs/go-log"
	"go.etcd.io/bbolt"

	"github.com/nla/cdxserver/record"
)

var log = golog.Logger("index")

// ErrNotFound is returned when a lookup by key or id finds nothing.
var ErrNotFound = fmt.Errorf("not found")

// ErrKv wraps an underlying store error with the operation that failed.
var ErrKv = fmt.Errorf("kv error")

// Bucket names: the four logical column families spec.md describes, plus
// two internal buckets this bbolt-backed realization needs: replog (the
// replication WAL) and meta (the id counters).
var (
	BucketDefault      = []byte("default")
	BucketAlias        = []byte("alias")
	BucketAccessRule   = []byte("access-rule")
	BucketAccessPolicy = []byte("access-policy")
	bucketReplog       = []byte("replog")
	bucketMeta         = []byte("meta")
)

var allBuckets = [][]byte{BucketDefault, BucketAlias, BucketAccessRule, BucketAccessPolicy, bucketReplog, bucketMeta}

// Index is one collection's open database.
type Index struct {
	Name string
	db   *bbolt.DB
}

// Open opens or creates the bbolt file for a collection at dir/name.cdx,
// creating the collection's buckets if this is a fresh database.
func Open(dir, name string) (*Index, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating collection dir: %v", ErrKv, err)
	}
	path := filepath.Join(dir, name+".cdx")
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrKv, path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: initialising buckets: %v", ErrKv, err)
	}

	return &Index{Name: name, db: db}, nil
}

// Close flushes and closes the underlying database.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// CaptureSeq is a lazy, forward-only, not-restartable sequence of captures.
// Its lifetime is bound to an open read transaction; Close releases it.
type CaptureSeq struct {
	tx     *bbolt.Tx
	cur    *bbolt.Cursor
	prefix []byte
	k, v   []byte
	done   bool
}

// Next advances the sequence, returning false once exhausted.
func (s *CaptureSeq) Next() (*record.Capture, bool, error) {
	if s.done {
		return nil, false, nil
	}
	if s.k == nil {
		return nil, false, nil
	}
	if s.prefix != nil && !hasPrefix(s.k, s.prefix) {
		s.done = true
		return nil, false, nil
	}
	urlKey, ts, err := record.DecodeCaptureKey(s.k)
	if err != nil {
		s.done = true
		return nil, false, err
	}
	cap, err := record.DecodeCaptureValue(urlKey, ts, s.v)
	if err != nil {
		s.done = true
		return nil, false, err
	}
	s.k, s.v = s.cur.Next()
	return cap, true, nil
}

// Close releases the snapshot transaction backing the sequence.
func (s *CaptureSeq) Close() error {
	s.done = true
	return s.tx.Rollback()
}

// CapturesAfter opens an iterator over the default bucket positioned at
// urlKeyStart, yielding every capture from that key onward in key order;
// it is not bounded to urlKeyStart as a prefix.
func (idx *Index) CapturesAfter(urlKeyStart string) (*CaptureSeq, error) {
	return idx.scan(BucketDefault, []byte(urlKeyStart), nil)
}

// Query opens a prefix iterator over the default bucket for an arbitrary
// byte prefix (built by the query pipeline from a match-type + SSURT).
func (idx *Index) Query(prefix []byte) (*CaptureSeq, error) {
	return idx.scan(BucketDefault, prefix, prefix)
}

func (idx *Index) scan(bucket, seek, prefix []byte) (*CaptureSeq, error) {
	tx, err := idx.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKv, err)
	}
	b := tx.Bucket(bucket)
	cur := b.Cursor()
	var k, v []byte
	if len(seek) == 0 {
		k, v = cur.First()
	} else {
		k, v = cur.Seek(seek)
	}
	return &CaptureSeq{tx: tx, cur: cur, prefix: prefix, k: k, v: v}, nil
}

// AliasSeq is a lazy sequence of Alias records in ascending aliasSurt order.
type AliasSeq struct {
	tx   *bbolt.Tx
	cur  *bbolt.Cursor
	k, v []byte
}

// Next advances the sequence, returning false once exhausted.
func (s *AliasSeq) Next() (*record.Alias, bool, error) {
	if s.k == nil {
		return nil, false, nil
	}
	a := &record.Alias{AliasSurt: string(s.k), TargetSurt: string(s.v)}
	s.k, s.v = s.cur.Next()
	return a, true, nil
}

// Close releases the snapshot transaction backing the sequence.
func (s *AliasSeq) Close() error {
	return s.tx.Rollback()
}

// ListAliases opens an iterator over the alias bucket positioned at start
// (the first alias when start is empty), running to the end of the bucket.
func (idx *Index) ListAliases(start string) (*AliasSeq, error) {
	tx, err := idx.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKv, err)
	}
	b := tx.Bucket(BucketAlias)
	cur := b.Cursor()
	var k, v []byte
	if start == "" {
		k, v = cur.First()
	} else {
		k, v = cur.Seek([]byte(start))
	}
	return &AliasSeq{tx: tx, cur: cur, k: k, v: v}, nil
}

// ResolveAlias looks up a single-hop alias target. Returns ok=false if surt
// has no alias.
func (idx *Index) ResolveAlias(surt string) (target string, ok bool, err error) {
	err = idx.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketAlias).Get([]byte(surt))
		if v != nil {
			target = string(v)
			ok = true
		}
		return nil
	})
	return target, ok, err
}

// EstimatedRecordCount delegates to the store's key count for the default
// bucket - bbolt's Stats().KeyN, the closest analogue to an estimate
// property on a store that otherwise keeps exact counts.
func (idx *Index) EstimatedRecordCount() (uint64, error) {
	var n uint64
	err := idx.db.View(func(tx *bbolt.Tx) error {
		n = uint64(tx.Bucket(BucketDefault).Stats().KeyN)
		return nil
	})
	return n, err
}

// AllocateID draws the next monotonic id from the named counter in the meta
// bucket, persisting it before returning so ids survive a restart. The
// counter key's own bucket transaction provides the serialization invariant
// promised in spec.md: allocation is never lock-free but is always
// monotonic and never reused.
func (idx *Index) AllocateID(counter string) (uint64, error) {
	var id uint64
	err := idx.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		key := []byte("counter:" + counter)
		cur := uint64(0)
		if v := b.Get(key); v != nil {
			cur = binary.BigEndian.Uint64(v)
		}
		cur++
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], cur)
		if err := b.Put(key, buf[:]); err != nil {
			return err
		}
		id = cur
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: allocating id: %v", ErrKv, err)
	}
	return id, nil
}

// PutRaw stores a single value in one of the access-control buckets through
// a one-operation Batch (used by the access package for rule and policy
// CRUD), so the write is appended to the replication log like any commit.
func (idx *Index) PutRaw(bucket, key, value []byte) error {
	b, err := idx.beginRawUpdate()
	if err != nil {
		return err
	}
	b.Put(bucket, key, value)
	return b.Commit()
}

// DeleteRaw removes a key from one of the access-control buckets.
func (idx *Index) DeleteRaw(bucket, key []byte) error {
	b, err := idx.beginRawUpdate()
	if err != nil {
		return err
	}
	b.Delete(bucket, key)
	return b.Commit()
}

// GetRaw reads a single key from any bucket.
func (idx *Index) GetRaw(bucket, key []byte) ([]byte, error) {
	var v []byte
	err := idx.db.View(func(tx *bbolt.Tx) error {
		if val := tx.Bucket(bucket).Get(key); val != nil {
			v = append([]byte(nil), val...)
		}
		return nil
	})
	return v, err
}

// IterateBucket calls fn for every key/value pair in bucket, in key order,
// until fn returns false.
func (idx *Index) IterateBucket(bucket []byte, fn func(k, v []byte) bool) error {
	return idx.db.View(func(tx *bbolt.Tx) error {
		cur := tx.Bucket(bucket).Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			if !fn(k, v) {
				break
			}
		}
		return nil
	})
}

func (idx *Index) beginRawUpdate() (*Batch, error) {
	return idx.BeginUpdate()
}

func hasPrefix(b, prefix []byte) bool {
	if len(prefix) == 0 {
		return true
	}
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}
