// Package txwire provides the low-level serialization primitives shared by
// the sighash engine and the transaction serializer.
//
// All multi-byte integers on the Zcash transparent wire are little-endian,
// and variable-length data is prefixed with a Bitcoin-style compact size.
// These helpers write into any io.Writer, which in practice is either a
// personalized BLAKE2b accumulator or the raw transaction buffer.
package txwire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TxHashSize is the byte length of a transaction hash / digest.
const TxHashSize = 32

// WriteUint32 writes v in little-endian byte order.
func WriteUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// WriteUint64 writes v in little-endian byte order.
func WriteUint64(w io.Writer, v uint64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// WriteCompactSize writes n as a Bitcoin-style variable-length integer.
func WriteCompactSize(w io.Writer, n uint64) error {
	switch {
	case n < 253:
		_, err := w.Write([]byte{byte(n)})
		return err
	case n <= 0xFFFF:
		if _, err := w.Write([]byte{253}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint16(n))
	case n <= 0xFFFFFFFF:
		if _, err := w.Write([]byte{254}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, uint32(n))
	default:
		if _, err := w.Write([]byte{255}); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, n)
	}
}

// WriteBytes writes b as-is.
func WriteBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}

// WriteBytesReversed writes b in reverse byte order. Transaction hashes are
// received in display order and serialized in internal order, so every
// outpoint write goes through here.
func WriteBytesReversed(w io.Writer, b []byte) error {
	reversed := make([]byte, len(b))
	for i, by := range b {
		reversed[len(b)-1-i] = by
	}
	_, err := w.Write(reversed)
	return err
}

// WriteBytesFixed writes b, which must be exactly size bytes long.
func WriteBytesFixed(w io.Writer, b []byte, size int) error {
	if len(b) != size {
		return fmt.Errorf("expected %d bytes, got %d", size, len(b))
	}
	_, err := w.Write(b)
	return err
}

// WriteBytesPrefixed writes b preceded by its compact-size length.
func WriteBytesPrefixed(w io.Writer, b []byte) error {
	if err := WriteCompactSize(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
