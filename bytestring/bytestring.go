// Package bytestring implements the length-prefixed byte buffer primitive
// the ciphertext container's framing is built from: container composes
// through SmartPack/SmartUnpack rather than hand-rolling its own length
// prefixes. The serialization package's fixed-width element encodings
// carry no length prefix and do not use this package.
package bytestring

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/openabe-go/oabe/abeerr"
)

// ByteString is a growable byte buffer with length-prefixed packing.
type ByteString struct {
	buf []byte
}

// New returns an empty ByteString, optionally seeded with b (copied).
func New(b ...byte) *ByteString {
	bs := &ByteString{}
	if len(b) > 0 {
		bs.buf = append(bs.buf, b...)
	}
	return bs
}

// FromBytes wraps a copy of b in a ByteString.
func FromBytes(b []byte) *ByteString {
	bs := &ByteString{buf: make([]byte, len(b))}
	copy(bs.buf, b)
	return bs
}

// Bytes returns the underlying buffer. Callers must not mutate it.
func (b *ByteString) Bytes() []byte { return b.buf }

// Len returns the number of bytes currently held.
func (b *ByteString) Len() int { return len(b.buf) }

// Clear empties the buffer without releasing capacity.
func (b *ByteString) Clear() { b.buf = b.buf[:0] }

// Append appends raw bytes with no length prefix.
func (b *ByteString) Append(p []byte) { b.buf = append(b.buf, p...) }

// PushByte appends a single byte.
func (b *ByteString) PushByte(v byte) { b.buf = append(b.buf, v) }

// Pack16 appends a 16-bit big-endian length-prefixed chunk.
func (b *ByteString) Pack16(p []byte) error {
	if len(p) > 0xFFFF {
		return fmt.Errorf("%w: chunk too large for 16-bit length prefix", abeerr.ErrInvalidLength)
	}
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(p)))
	b.buf = append(b.buf, hdr[:]...)
	b.buf = append(b.buf, p...)
	return nil
}

// SmartPack appends a 32-bit big-endian length prefix followed by p.
func (b *ByteString) SmartPack(p []byte) {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(p)))
	b.buf = append(b.buf, hdr[:]...)
	b.buf = append(b.buf, p...)
}

// SmartUnpack reads one length-prefixed chunk starting at *index and
// advances *index past it.
func SmartUnpack(input []byte, index *int) ([]byte, error) {
	if *index+4 > len(input) {
		return nil, fmt.Errorf("%w: truncated smart-pack length header", abeerr.ErrInvalidLength)
	}
	n := binary.BigEndian.Uint32(input[*index : *index+4])
	*index += 4
	if *index+int(n) > len(input) {
		return nil, fmt.Errorf("%w: truncated smart-pack body", abeerr.ErrInvalidLength)
	}
	out := input[*index : *index+int(n)]
	*index += int(n)
	return out, nil
}

// GetSubset returns a copy of b.buf[offset:offset+length].
func (b *ByteString) GetSubset(offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(b.buf) {
		return nil, fmt.Errorf("%w: subset out of range", abeerr.ErrInvalidLength)
	}
	out := make([]byte, length)
	copy(out, b.buf[offset:offset+length])
	return out, nil
}

// ToHex returns the lowercase hex encoding of the buffer.
func (b *ByteString) ToHex() string { return hex.EncodeToString(b.buf) }

// FromHex replaces the buffer's contents with the bytes decoded from s.
func (b *ByteString) FromHex(s string) error {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", abeerr.ErrDeserializationFailed, err)
	}
	b.buf = decoded
	return nil
}
