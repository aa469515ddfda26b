// Package sighash implements the ZIP 143 and ZIP 243 signature hash
// algorithms for overwintered Zcash transactions.
//
// ZIP 143 defines the preimage layout for v3 (Overwinter) transactions and
// ZIP 243 extends it for v4 (Sapling). Both commit every input signature to
// three transaction-wide digests (prevouts, sequence numbers, outputs) plus
// a per-input section, all hashed with personalized BLAKE2b-256.
//
// This implementation corresponds to:
//   - zcash/zips: zip-0143.rst, zip-0243.rst
//   - zcashd: src/script/interpreter.cpp (SignatureHash, overwintered branch)
//
// References:
//   - ZIP 143: https://zips.z.cash/zip-0143
//   - ZIP 243: https://zips.z.cash/zip-0243
package sighash

import (
	"encoding/binary"
	"hash"

	blake2b "github.com/minio/blake2b-simd"
)

// BLAKE2b personalization strings. The personalization is a distinct hash
// parameter, not a key; each accumulator role gets its own so digests from
// different roles can never collide.
const (
	personalizationSize = 16

	prevoutsPersonalization = "ZcashPrevoutHash"
	sequencePersonalization = "ZcashSequencHash"
	outputsPersonalization  = "ZcashOutputsHash"

	// The preimage personalization is this 12-byte prefix followed by the
	// 4-byte little-endian consensus branch ID.
	sigHashPersonalizationPrefix = "ZcashSigHash"
)

// HashWriter accumulates bytes into a personalized BLAKE2b-256 digest.
//
// A writer is bound to one personalization at construction and is
// append-only: Finalize locks it, after which any further Write is a
// protocol violation and panics. Finalize itself may be repeated and keeps
// returning the same digest, since every per-input preimage embeds the same
// three commitment digests.
type HashWriter struct {
	h         hash.Hash
	finalized bool
	digest    [32]byte
}

func newHashWriter(personalization string) *HashWriter {
	ensure(len(personalization) == personalizationSize,
		"hash personalization must be 16 bytes")

	h, err := blake2b.New(&blake2b.Config{
		Size:   32,
		Person: []byte(personalization),
	})
	ensure(err == nil, "blake2b configuration rejected")

	return &HashWriter{h: h}
}

// newSigHashWriter builds the preimage accumulator for one consensus branch.
func newSigHashWriter(branchID uint32) *HashWriter {
	personalization := make([]byte, personalizationSize)
	copy(personalization, sigHashPersonalizationPrefix)
	binary.LittleEndian.PutUint32(personalization[12:], branchID)
	return newHashWriter(string(personalization))
}

// Write appends p to the accumulator. Call order is significant.
func (hw *HashWriter) Write(p []byte) (int, error) {
	ensure(!hw.finalized, "write into finalized hash writer")
	return hw.h.Write(p)
}

// Finalize locks the accumulator and returns its 32-byte digest.
func (hw *HashWriter) Finalize() [32]byte {
	if !hw.finalized {
		copy(hw.digest[:], hw.h.Sum(nil))
		hw.finalized = true
	}
	return hw.digest
}
