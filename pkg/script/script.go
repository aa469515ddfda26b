// Package script builds the canonical transparent script forms used by the
// signing flow and the sighash script-code resolver.
//
// Only the two shapes the signer supports are implemented: single-signature
// pay-to-public-key-hash and m-of-n CHECKMULTISIG redeem scripts. Script
// evaluation is a node concern and out of scope here.
package script

import (
	"fmt"

	"github.com/btcsuite/btcutil"
)

// Script opcodes used by the builders.
const (
	OP_1             = 0x51
	OP_16            = 0x60
	OP_DUP           = 0x76
	OP_EQUALVERIFY   = 0x88
	OP_HASH160       = 0xA9
	OP_CHECKSIG      = 0xAC
	OP_CHECKMULTISIG = 0xAE
)

// Sizes of the hashes and keys the builders accept.
const (
	PubKeyHashSize          = 20
	CompressedPubKeySize    = 33
	UncompressedPubKeySize  = 65
	maxMultisigParticipants = 15
)

// PubKeyHash returns HASH160 of a serialized public key, the value a P2PKH
// output commits to.
func PubKeyHash(pubKey []byte) []byte {
	return btcutil.Hash160(pubKey)
}

// BuildP2PKH builds the canonical pay-to-public-key-hash output script:
//
//	OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
func BuildP2PKH(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != PubKeyHashSize {
		return nil, fmt.Errorf("pubkey hash must be %d bytes, got %d",
			PubKeyHashSize, len(pubKeyHash))
	}

	s := make([]byte, 0, 25)
	s = append(s, OP_DUP, OP_HASH160, PubKeyHashSize)
	s = append(s, pubKeyHash...)
	s = append(s, OP_EQUALVERIFY, OP_CHECKSIG)
	return s, nil
}

// BuildMultisig builds the canonical m-of-n CHECKMULTISIG redeem script:
//
//	OP_m <pubkey>... OP_n OP_CHECKMULTISIG
//
// Keys are emitted exactly in the order given; no re-sorting is applied.
func BuildMultisig(pubKeys [][]byte, m int) ([]byte, error) {
	n := len(pubKeys)
	if n == 0 || n > maxMultisigParticipants {
		return nil, fmt.Errorf("multisig needs 1-%d pubkeys, got %d",
			maxMultisigParticipants, n)
	}
	if m < 1 || m > n {
		return nil, fmt.Errorf("multisig threshold %d out of range for %d pubkeys", m, n)
	}

	s := []byte{OP_1 - 1 + byte(m)}
	for i, pubKey := range pubKeys {
		if len(pubKey) != CompressedPubKeySize && len(pubKey) != UncompressedPubKeySize {
			return nil, fmt.Errorf("pubkey %d has invalid length %d", i, len(pubKey))
		}
		s = append(s, byte(len(pubKey)))
		s = append(s, pubKey...)
	}
	s = append(s, OP_1-1+byte(n), OP_CHECKMULTISIG)
	return s, nil
}

// BuildP2PKHSigScript builds the unlocking script for a P2PKH input:
//
//	<signature> <pubkey>
//
// The signature must already carry its trailing sighash-type byte.
func BuildP2PKHSigScript(signature, pubKey []byte) ([]byte, error) {
	if len(signature) == 0 || len(signature) > 75 {
		return nil, fmt.Errorf("signature length %d not directly pushable", len(signature))
	}
	if len(pubKey) != CompressedPubKeySize && len(pubKey) != UncompressedPubKeySize {
		return nil, fmt.Errorf("pubkey has invalid length %d", len(pubKey))
	}

	s := make([]byte, 0, 2+len(signature)+len(pubKey))
	s = append(s, byte(len(signature)))
	s = append(s, signature...)
	s = append(s, byte(len(pubKey)))
	s = append(s, pubKey...)
	return s, nil
}
