package sighash

import (
	"github.com/suffix-labs/zcash-owsig/pkg/coin"
	"github.com/suffix-labs/zcash-owsig/pkg/txwire"
)

// Zip243 implements the ZIP 243 (Sapling, v4) signature hash. It shares the
// commitment accumulators with Zip143 and differs only in the preimage tail:
// three shielded placeholder digests and a value-balance field.
//
// This device never constructs shielded components, so hashShieldedSpends,
// hashShieldedOutputs, hashJoinSplits and valueBalance are the fixed values
// the protocol defines for a transaction without them: zero bytes.
type Zip243 struct {
	Zip143
}

// NewZip243 creates the v4 strategy for the given consensus branch.
func NewZip243(branchID uint32) *Zip243 {
	return &Zip243{Zip143: *NewZip143(branchID)}
}

// PreimageHash implements SigHasher per ZIP 243.
func (z *Zip243) PreimageHash(coinParams *coin.Params, tx *TxHeader,
	txi *TxInput, pubKeyHash []byte, sighashType uint32) ([32]byte, error) {

	ensure(coinParams.Overwintered, "zip243 sighash on non-overwintered coin")
	ensure(tx.Version == 4, "zip243 sighash needs a version 4 transaction")

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
	h.Write(zeroHash[:]) // 7. hashShieldedSpends
	h.Write(zeroHash[:]) // 8. hashShieldedOutputs

	txwire.WriteUint32(h, tx.LockTime) // 9. nLockTime
	txwire.WriteUint32(h, tx.Expiry)   // 10. expiryHeight
	txwire.WriteUint64(h, 0)           // 11. valueBalance
	txwire.WriteUint32(h, sighashType) // 12. nHashType

	if err := writeSignedInput(h, txi, pubKeyHash); err != nil { // 13. input
		return [32]byte{}, err
	}

	return h.Finalize(), nil
}
