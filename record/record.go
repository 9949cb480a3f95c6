// Package record defines the binary key/value encodings for Capture and
// Alias records and the sort-order contract those encodings guarantee.
package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ErrCorrupt is returned when a stored value cannot be decoded. It is
// distinct from "not found": the key existed, but its bytes are broken.
var ErrCorrupt = fmt.Errorf("corrupt record")

// Capture is one observation of one URL at one instant.
type Capture struct {
	UrlKey      string // SSURT of the capture's URL
	Timestamp   uint64 // 14-digit yyyyMMddHHmmss as an integer
	OriginalUrl string
	Status      int
	MimeType    string
	Digest      string
	RedirectUrl string // "-" when none
	RobotFlags  string // "-" when none
	Length      uint64
	Offset      uint64
	File        string
}

// Alias is a directed canonicalisation equivalence: AliasSurt -> TargetSurt.
type Alias struct {
	AliasSurt  string
	TargetSurt string
}

// EncodeCaptureKey builds the capture key: urlKey bytes, a 0x00 separator,
// then the timestamp as big-endian uint64. Big-endian integers sort
// lexicographically the same as numerically; the separator byte prevents a
// shorter urlKey's bytes from reaching into a longer urlKey's timestamp.
func EncodeCaptureKey(urlKey string, timestamp uint64) []byte {
	key := make([]byte, 0, len(urlKey)+1+8)
	key = append(key, urlKey...)
	key = append(key, 0x00)
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], timestamp)
	return append(key, ts[:]...)
}

// DecodeCaptureKey splits a capture key back into its urlKey and timestamp.
func DecodeCaptureKey(key []byte) (urlKey string, timestamp uint64, err error) {
	if len(key) < 9 {
		return "", 0, fmt.Errorf("%w: capture key too short (%d bytes)", ErrCorrupt, len(key))
	}
	split := len(key) - 9
	if key[split] != 0x00 {
		return "", 0, fmt.Errorf("%w: missing separator in capture key", ErrCorrupt)
	}
	urlKey = string(key[:split])
	timestamp = binary.BigEndian.Uint64(key[split+1:])
	return urlKey, timestamp, nil
}

// EncodeCaptureValue writes the capture's fields in their stable order:
// originalUrl, status, mimeType, digest, redirectUrl, robotFlags, length,
// offset, file. Strings are length-prefixed; unknown trailing bytes in a
// decode are tolerated for forward compatibility.
func EncodeCaptureValue(c *Capture) []byte {
	var buf bytes.Buffer
	writeString(&buf, c.OriginalUrl)
	writeInt32(&buf, int32(c.Status))
	writeString(&buf, c.MimeType)
	writeString(&buf, c.Digest)
	writeString(&buf, c.RedirectUrl)
	writeString(&buf, c.RobotFlags)
	writeUint64(&buf, c.Length)
	writeUint64(&buf, c.Offset)
	writeString(&buf, c.File)
	return buf.Bytes()
}

// DecodeCaptureValue reverses EncodeCaptureValue. UrlKey and Timestamp are
// not part of the value; callers fill them in from the key.
func DecodeCaptureValue(urlKey string, timestamp uint64, data []byte) (*Capture, error) {
	r := bytes.NewReader(data)
	c := &Capture{UrlKey: urlKey, Timestamp: timestamp}

	var err error
	if c.OriginalUrl, err = readString(r); err != nil {
		return nil, err
	}
	var status int32
	if status, err = readInt32(r); err != nil {
		return nil, err
	}
	c.Status = int(status)
	if c.MimeType, err = readString(r); err != nil {
		return nil, err
	}
	if c.Digest, err = readString(r); err != nil {
		return nil, err
	}
	if c.RedirectUrl, err = readString(r); err != nil {
		return nil, err
	}
	if c.RobotFlags, err = readString(r); err != nil {
		return nil, err
	}
	if c.Length, err = readUint64(r); err != nil {
		return nil, err
	}
	if c.Offset, err = readUint64(r); err != nil {
		return nil, err
	}
	if c.File, err = readString(r); err != nil {
		return nil, err
	}
	return c, nil
}

// EncodeAliasKey returns the alias key bytes: the aliasSurt, verbatim.
func EncodeAliasKey(aliasSurt string) []byte {
	return []byte(aliasSurt)
}

// EncodeAliasValue returns the alias value bytes: the targetSurt, verbatim.
func EncodeAliasValue(targetSurt string) []byte {
	return []byte(targetSurt)
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeInt32(buf *bytes.Buffer, v int32) {
	writeUint32(buf, uint32(v))
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readInt32(r *bytes.Reader) (int32, error) {
	v, err := readUint32(r)
	return int32(v), err
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := readFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n, err := r.Read(buf)
	if err != nil || n != len(buf) {
		return n, fmt.Errorf("%w: short read (wanted %d, got %d): %v", ErrCorrupt, len(buf), n, err)
	}
	return n, nil
}
