// Package keys implements secp256k1 key handling and ECDSA signing for
// transparent inputs.
//
// Zcash transparent spends use Bitcoin-style secp256k1 ECDSA with
// DER-encoded signatures, and transparent private keys travel in WIF with
// the Bitcoin version bytes (0x80 mainnet, 0xEF testnet).
package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const privateKeySize = 32

// WIF version bytes.
const (
	wifVersionMainnet = 0x80
	wifVersionTestnet = 0xEF
)

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// FromBytes creates a private key from its raw 32-byte form.
func FromBytes(raw []byte) (*PrivateKey, error) {
	if len(raw) != privateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d",
			privateKeySize, len(raw))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(raw)}, nil
}

// ParseWIF parses a WIF-encoded private key.
//
// WIF layout: version || key (32 bytes) || [compression flag] || checksum (4 bytes)
func ParseWIF(wif string) (*PrivateKey, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != 37 && len(decoded) != 38 {
		return nil, errors.New("invalid WIF length")
	}

	version := decoded[0]
	if version != wifVersionMainnet && version != wifVersionTestnet {
		return nil, fmt.Errorf("invalid WIF version byte: 0x%02x", version)
	}

	checksumOffset := len(decoded) - 4
	payload := decoded[:checksumOffset]

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	if string(decoded[checksumOffset:]) != string(hash2[:4]) {
		return nil, errors.New("WIF checksum mismatch")
	}

	return FromBytes(payload[1 : 1+privateKeySize])
}

// EncodeWIF encodes a private key to WIF.
func EncodeWIF(pk *PrivateKey, compressed bool, testnet bool) string {
	version := byte(wifVersionMainnet)
	if testnet {
		version = wifVersionTestnet
	}

	payload := append([]byte{version}, pk.key.Serialize()...)
	if compressed {
		payload = append(payload, 0x01)
	}

	hash1 := sha256.Sum256(payload)
	hash2 := sha256.Sum256(hash1[:])
	payload = append(payload, hash2[:4]...)

	return base58.Encode(payload)
}

// Sign produces a DER-encoded ECDSA signature over digest. The sighash-type
// byte is appended by the caller, not here.
func (pk *PrivateKey) Sign(digest [32]byte) []byte {
	return ecdsa.Sign(pk.key, digest[:]).Serialize()
}

// PublicKey derives the public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Bytes returns the 33-byte compressed serialization.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// Hash160 returns HASH160 of the compressed public key, the hash a P2PKH
// output commits to.
func (pub *PublicKey) Hash160() []byte {
	return btcutil.Hash160(pub.Bytes())
}

// Verify reports whether signature (DER, without a trailing sighash-type
// byte) is a valid signature of digest by pub.
func Verify(pub *PublicKey, digest [32]byte, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(digest[:], pub.key)
}
