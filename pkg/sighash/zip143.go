package sighash

import (
	"github.com/suffix-labs/zcash-owsig/pkg/coin"
	"github.com/suffix-labs/zcash-owsig/pkg/txwire"
)

// OverwinteredFlag is bit 31 of the version field; it marks a transaction as
// using the overwintered format.
const OverwinteredFlag uint32 = 0x80000000

var zeroHash [txwire.TxHashSize]byte

// SigHasher is the capability shared by the version strategies. The driving
// flow feeds every input's prevout and sequence and every serialized output
// exactly once, in transaction order, before requesting any preimage hash.
//
// A SigHasher serves one transaction and must not be shared across
// transactions or concurrent signing attempts.
type SigHasher interface {
	// AddPrevout feeds one input's outpoint into the prevouts commitment.
	// prevHash is the 32-byte previous txid in display byte order.
	AddPrevout(prevHash []byte, index uint32)

	// AddSequence feeds one input's sequence number into the sequence
	// commitment.
	AddSequence(sequence uint32)

	// AddOutput feeds one serialized output into the outputs commitment.
	AddOutput(serialized []byte)

	// PreimageHash assembles the full signature-hash preimage for one input
	// and returns its digest, the value the input's signature is computed
	// over.
	PreimageHash(coinParams *coin.Params, tx *TxHeader, txi *TxInput,
		pubKeyHash []byte, sighashType uint32) ([32]byte, error)
}

// Zip143 implements the ZIP 143 (Overwinter, v3) signature hash. It owns the
// three commitment accumulators exclusively for the lifetime of one
// transaction.
type Zip143 struct {
	branchID  uint32
	hPrevouts *HashWriter
	hSequence *HashWriter
	hOutputs  *HashWriter
}

// NewZip143 creates the v3 strategy for the given consensus branch.
func NewZip143(branchID uint32) *Zip143 {
	return &Zip143{
		branchID:  branchID,
		hPrevouts: newHashWriter(prevoutsPersonalization),
		hSequence: newHashWriter(sequencePersonalization),
		hOutputs:  newHashWriter(outputsPersonalization),
	}
}

// BranchID returns the consensus branch ID the preimage personalization
// embeds.
func (z *Zip143) BranchID() uint32 {
	return z.branchID
}

// AddPrevout implements SigHasher.
func (z *Zip143) AddPrevout(prevHash []byte, index uint32) {
	txwire.WriteBytesReversed(z.hPrevouts, prevHash)
	txwire.WriteUint32(z.hPrevouts, index)
}

// AddSequence implements SigHasher.
func (z *Zip143) AddSequence(sequence uint32) {
	txwire.WriteUint32(z.hSequence, sequence)
}

// AddOutput implements SigHasher.
func (z *Zip143) AddOutput(serialized []byte) {
	z.hOutputs.Write(serialized)
}

func (z *Zip143) prevoutsHash() [32]byte { return z.hPrevouts.Finalize() }
func (z *Zip143) sequenceHash() [32]byte { return z.hSequence.Finalize() }
func (z *Zip143) outputsHash() [32]byte  { return z.hOutputs.Finalize() }

// PreimageHash implements SigHasher per ZIP 143.
func (z *Zip143) PreimageHash(coinParams *coin.Params, tx *TxHeader,
	txi *TxInput, pubKeyHash []byte, sighashType uint32) ([32]byte, error) {

	ensure(coinParams.Overwintered, "zip143 sighash on non-overwintered coin")
	ensure(tx.Version == 3, "zip143 sighash needs a version 3 transaction")

	h := newSigHashWriter(z.branchID)

	txwire.WriteUint32(h, tx.Version|OverwinteredFlag) // 1. nVersion | fOverwintered
	txwire.WriteUint32(h, tx.VersionGroupID)           // 2. nVersionGroupId

	prevouts := z.prevoutsHash()
	h.Write(prevouts[:]) // 3. hashPrevouts
	sequence := z.sequenceHash()
	h.Write(sequence[:]) // 4. hashSequence
	outputs := z.outputsHash()
	h.Write(outputs[:]) // 5. hashOutputs

	h.Write(zeroHash[:]) // 6. hashJoinSplits

	txwire.WriteUint32(h, tx.LockTime)  // 7. nLockTime
	txwire.WriteUint32(h, tx.Expiry)    // 8. expiryHeight
	txwire.WriteUint32(h, sighashType)  // 9. nHashType

	if err := writeSignedInput(h, txi, pubKeyHash); err != nil { // 10. input
		return [32]byte{}, err
	}

	return h.Finalize(), nil
}

// writeSignedInput emits the per-input section shared by ZIP 143 and
// ZIP 243: outpoint, length-prefixed script code, amount, sequence.
func writeSignedInput(h *HashWriter, txi *TxInput, pubKeyHash []byte) error {
	txwire.WriteBytesReversed(h, txi.PrevHash)
	txwire.WriteUint32(h, txi.PrevIndex)

	scriptCode, err := deriveScriptCode(txi, pubKeyHash)
	if err != nil {
		return err
	}
	txwire.WriteBytesPrefixed(h, scriptCode)

	txwire.WriteUint64(h, txi.Amount)
	txwire.WriteUint32(h, txi.Sequence)
	return nil
}
