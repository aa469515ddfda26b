package sighash

import (
	"bytes"

	"github.com/suffix-labs/zcash-owsig/pkg/txwire"
)

// SighashType flags. The flag is caller-supplied and written verbatim into
// the preimage; the device signs with SighashAll.
const (
	SighashAll uint32 = 0x01
)

// ScriptType classifies how a transparent input is spent. Only the two
// shapes below are legal for script-code resolution.
type ScriptType uint32

const (
	// SpendAddress is a single-signature P2PKH spend.
	SpendAddress ScriptType = iota

	// SpendMultisig spends an m-of-n multisig output; the input must carry
	// a MultisigDescriptor.
	SpendMultisig
)

// String returns the protocol name of the script type.
func (st ScriptType) String() string {
	switch st {
	case SpendAddress:
		return "SPENDADDRESS"
	case SpendMultisig:
		return "SPENDMULTISIG"
	default:
		return "UNKNOWN"
	}
}

// TxHeader holds the per-transaction fields of an overwintered transaction.
// It is supplied once when signing starts and never mutated afterwards.
type TxHeader struct {
	Version        uint32 // 3 (Overwinter) or 4 (Sapling)
	VersionGroupID uint32
	BranchID       uint32 // Consensus branch ID; 0 means the version's default
	LockTime       uint32
	Expiry         uint32 // Expiry height (ZIP 203)
}

// MultisigDescriptor describes an m-of-n multisig input. PubKeys are in
// redeem-script order; no re-sorting is inferred.
type MultisigDescriptor struct {
	PubKeys [][]byte
	M       int // Signature threshold
}

// TxInput is one transparent input of the transaction being signed.
// Read-only during hashing.
type TxInput struct {
	PrevHash   []byte // 32-byte previous txid, display byte order
	PrevIndex  uint32
	Sequence   uint32
	Amount     uint64 // Value of the spent output in zatoshis
	ScriptType ScriptType
	Multisig   *MultisigDescriptor // Set only for SpendMultisig inputs
}

// TxOutput is one transparent output of the transaction being signed.
type TxOutput struct {
	Amount       uint64
	ScriptPubKey []byte
}

// Serialize returns the wire form of the output: value followed by the
// length-prefixed locking script. This is the blob fed to AddOutput.
func (txo *TxOutput) Serialize() []byte {
	buf := new(bytes.Buffer)
	txwire.WriteUint64(buf, txo.Amount)
	txwire.WriteBytesPrefixed(buf, txo.ScriptPubKey)
	return buf.Bytes()
}
