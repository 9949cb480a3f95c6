package index

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/nla/cdxserver/record"
)

const (
	opPut    byte = 1
	opDelete byte = 2
)

type kvOp struct {
	op     byte
	bucket []byte
	key    []byte
	value  []byte
}

// Batch is a scoped, guaranteed-release write batch. Commit is atomic
// across all column families and appends exactly one entry to the
// replication log; on any other exit path the batch is discarded and
// nothing is persisted.
type Batch struct {
	idx  *Index
	tx   *bbolt.Tx
	ops  []kvOp
	done bool
}

// BeginUpdate acquires a write batch. Callers must call Commit or Rollback
// exactly once; a batch that is dropped without either leaves its
// transaction open, so callers should defer Rollback immediately after a
// successful BeginUpdate and let Commit's own Rollback-on-already-committed
// no-op win when the happy path runs to completion.
func (idx *Index) BeginUpdate() (*Batch, error) {
	tx, err := idx.db.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKv, err)
	}
	return &Batch{idx: idx, tx: tx}, nil
}

// PutCapture stages a capture insert.
func (b *Batch) PutCapture(c *record.Capture) error {
	key := record.EncodeCaptureKey(c.UrlKey, c.Timestamp)
	val := record.EncodeCaptureValue(c)
	return b.Put(BucketDefault, key, val)
}

// DeleteCapture stages a capture removal.
func (b *Batch) DeleteCapture(c *record.Capture) error {
	key := record.EncodeCaptureKey(c.UrlKey, c.Timestamp)
	return b.Delete(BucketDefault, key)
}

// PutAlias stages an alias insert.
func (b *Batch) PutAlias(aliasSurt, targetSurt string) error {
	return b.Put(BucketAlias, record.EncodeAliasKey(aliasSurt), record.EncodeAliasValue(targetSurt))
}

// DeleteAlias stages an alias removal.
func (b *Batch) DeleteAlias(aliasSurt string) error {
	return b.Delete(BucketAlias, record.EncodeAliasKey(aliasSurt))
}

// Put stages an arbitrary bucket write, used by access/ for rule and policy
// CRUD so those mutations replicate through the same feed as captures.
func (b *Batch) Put(bucket, key, value []byte) error {
	if err := b.tx.Bucket(bucket).Put(key, value); err != nil {
		return fmt.Errorf("%w: %v", ErrKv, err)
	}
	b.ops = append(b.ops, kvOp{op: opPut, bucket: bucket, key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
}

// Delete stages an arbitrary bucket delete.
func (b *Batch) Delete(bucket, key []byte) error {
	if err := b.tx.Bucket(bucket).Delete(key); err != nil {
		return fmt.Errorf("%w: %v", ErrKv, err)
	}
	b.ops = append(b.ops, kvOp{op: opDelete, bucket: bucket, key: append([]byte(nil), key...)})
	return nil
}

// Commit atomically applies every staged operation, appends the batch to
// the replog under the next sequence number, and releases the transaction.
func (b *Batch) Commit() error {
	if b.done {
		return nil
	}
	b.done = true

	seq, err := nextSeq(b.tx)
	if err != nil {
		b.tx.Rollback()
		return err
	}
	entry := encodeBatch(b.ops)
	if err := b.tx.Bucket(bucketReplog).Put(seqKey(seq), entry); err != nil {
		b.tx.Rollback()
		return fmt.Errorf("%w: appending replog entry: %v", ErrKv, err)
	}

	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrKv, err)
	}
	return nil
}

// Rollback discards every staged operation. Safe to call after Commit (no-op).
func (b *Batch) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	return b.tx.Rollback()
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}

func nextSeq(tx *bbolt.Tx) (uint64, error) {
	b := tx.Bucket(bucketReplog)
	cur := b.Cursor()
	k, _ := cur.Last()
	if k == nil {
		return 1, nil
	}
	return binary.BigEndian.Uint64(k) + 1, nil
}

// ChangeEntry is one replicated batch: a sequence number and the opaque,
// base64-encodable bytes a secondary applies verbatim.
type ChangeEntry struct {
	SequenceNumber uint64
	WriteBatch     []byte
}

// GetUpdatesSince streams every replicated batch with sequenceNumber >=
// since+1, the replication feed behind GET /<col>/changes.
func (idx *Index) GetUpdatesSince(since uint64) ([]ChangeEntry, error) {
	var entries []ChangeEntry
	err := idx.db.View(func(tx *bbolt.Tx) error {
		cur := tx.Bucket(bucketReplog).Cursor()
		start := seqKey(since + 1)
		for k, v := cur.Seek(start); k != nil; k, v = cur.Next() {
			entries = append(entries, ChangeEntry{
				SequenceNumber: binary.BigEndian.Uint64(k),
				WriteBatch:     append([]byte(nil), v...),
			})
		}
		return nil
	})
	return entries, err
}

// Sequence returns the latest assigned replog sequence number, 0 if none.
func (idx *Index) Sequence() (uint64, error) {
	var seq uint64
	err := idx.db.View(func(tx *bbolt.Tx) error {
		k, _ := tx.Bucket(bucketReplog).Cursor().Last()
		if k != nil {
			seq = binary.BigEndian.Uint64(k)
		}
		return nil
	})
	return seq, err
}

// FlushWal truncates the replication log, so a secondary must request a
// fresh baseline rather than resuming from a sequence number this primary
// no longer has.
func (idx *Index) FlushWal() error {
	return idx.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketReplog); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketReplog)
		return err
	})
}

// ApplyChangeBatch decodes and replays a replicated batch verbatim inside
// one transaction, the idempotent "apply by absolute keys" operation a
// secondary performs against the feed from GetUpdatesSince.
func (idx *Index) ApplyChangeBatch(seq uint64, data []byte) error {
	ops, err := decodeBatch(data)
	if err != nil {
		return err
	}
	return idx.db.Update(func(tx *bbolt.Tx) error {
		for _, op := range ops {
			b := tx.Bucket(op.bucket)
			if b == nil {
				nb, err := tx.CreateBucketIfNotExists(op.bucket)
				if err != nil {
					return err
				}
				b = nb
			}
			switch op.op {
			case opPut:
				if err := b.Put(op.key, op.value); err != nil {
					return err
				}
			case opDelete:
				if err := b.Delete(op.key); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown replication op %d", ErrKv, op.op)
			}
		}
		if err := tx.Bucket(bucketReplog).Put(seqKey(seq), data); err != nil {
			return err
		}
		return nil
	})
}

// encodeBatch serializes a set of put/delete operations into the
// self-describing binary format used both for the on-disk replog entry and
// the base64 payload /changes returns:
//
//	[op:1][bucket-len:2][bucket][key-len:4][key][val-len:4][val] ...
//
// val-len/val are omitted for delete operations.
func encodeBatch(ops []kvOp) []byte {
	var buf bytes.Buffer
	for _, op := range ops {
		buf.WriteByte(op.op)
		writeUint16(&buf, uint16(len(op.bucket)))
		buf.Write(op.bucket)
		writeUint32(&buf, uint32(len(op.key)))
		buf.Write(op.key)
		if op.op == opPut {
			writeUint32(&buf, uint32(len(op.value)))
			buf.Write(op.value)
		}
	}
	return buf.Bytes()
}

func decodeBatch(data []byte) ([]kvOp, error) {
	var ops []kvOp
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		opByte, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated replication batch: %v", ErrKv, err)
		}
		bucketLen, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		bucket := make([]byte, bucketLen)
		if _, err := r.Read(bucket); err != nil {
			return nil, fmt.Errorf("%w: truncated replication batch: %v", ErrKv, err)
		}
		keyLen, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		key := make([]byte, keyLen)
		if _, err := r.Read(key); err != nil {
			return nil, fmt.Errorf("%w: truncated replication batch: %v", ErrKv, err)
		}
		op := kvOp{op: opByte, bucket: bucket, key: key}
		if opByte == opPut {
			valLen, err := readUint32(r)
			if err != nil {
				return nil, err
			}
			val := make([]byte, valLen)
			if _, err := r.Read(val); err != nil {
				return nil, fmt.Errorf("%w: truncated replication batch: %v", ErrKv, err)
			}
			op.value = val
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrKv, err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrKv, err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// EncodeChangesForWire base64-encodes a change entry's batch bytes, the
// representation GET /<col>/changes sends over the wire.
func EncodeChangesForWire(entries []ChangeEntry) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]interface{}{
			"sequenceNumber": e.SequenceNumber,
			"writeBatch":     base64.StdEncoding.EncodeToString(e.WriteBatch),
		})
	}
	return out
}
