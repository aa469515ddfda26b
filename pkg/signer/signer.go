// Package signer drives the two-pass transparent signing flow over the
// ZIP 143/243 sighash engine.
//
// Pass one feeds every input's outpoint and sequence and every output into
// the strategy's commitment accumulators. Pass two produces the per-input
// preimage digest, signs it, and retains the scriptSig so the finished raw
// transaction can be serialized with the overwintered header and footer.
//
// One Signer serves one transaction. The commitment hashes cover all inputs
// and outputs, so AddInput/AddOutput must all happen before the first
// SignInput; the accumulators enforce this and panic on a late add.
package signer

import (
	"fmt"
	"io"

	"github.com/suffix-labs/zcash-owsig/pkg/coin"
	"github.com/suffix-labs/zcash-owsig/pkg/keys"
	"github.com/suffix-labs/zcash-owsig/pkg/overwinter"
	"github.com/suffix-labs/zcash-owsig/pkg/script"
	"github.com/suffix-labs/zcash-owsig/pkg/sighash"
	"github.com/suffix-labs/zcash-owsig/pkg/txwire"
)

// Signer accumulates one transaction and signs its transparent inputs.
type Signer struct {
	coin   *coin.Params
	tx     *sighash.TxHeader
	hasher sighash.SigHasher

	inputs     []*sighash.TxInput
	outputs    []*sighash.TxOutput
	scriptSigs [][]byte
}

// New creates a signer for one transaction. The strategy (and with it the
// consensus branch) is resolved here, once, from the declared version.
func New(coinParams *coin.Params, tx *sighash.TxHeader) (*Signer, error) {
	hasher, err := overwinter.NewSigHasher(tx, coinParams)
	if err != nil {
		return nil, err
	}

	log.Debugf("signing %s transaction: version=%d branch_id=0x%08X",
		coinParams.Name, tx.Version, tx.BranchID)

	return &Signer{
		coin:   coinParams,
		tx:     tx,
		hasher: hasher,
	}, nil
}

// AddInput feeds one input into the prevouts and sequence commitments and
// retains it for the signing pass.
func (s *Signer) AddInput(txi *sighash.TxInput) error {
	if len(txi.PrevHash) != txwire.TxHashSize {
		return fmt.Errorf("input %d: prev hash must be %d bytes, got %d",
			len(s.inputs), txwire.TxHashSize, len(txi.PrevHash))
	}

	s.hasher.AddPrevout(txi.PrevHash, txi.PrevIndex)
	s.hasher.AddSequence(txi.Sequence)
	s.inputs = append(s.inputs, txi)
	s.scriptSigs = append(s.scriptSigs, nil)

	log.Tracef("added input %d: %x:%d", len(s.inputs)-1, txi.PrevHash, txi.PrevIndex)
	return nil
}

// AddOutput feeds one output into the outputs commitment and retains it for
// serialization.
func (s *Signer) AddOutput(txo *sighash.TxOutput) {
	s.hasher.AddOutput(txo.Serialize())
	s.outputs = append(s.outputs, txo)

	log.Tracef("added output %d: %d zatoshi", len(s.outputs)-1, txo.Amount)
}

// SignInput signs input i with key and returns the signature in scriptSig
// form: DER || sighash-type byte. For plain address spends the P2PKH
// scriptSig is also retained for Serialize; multisig inputs get their
// signature returned for external script assembly.
func (s *Signer) SignInput(i int, key *keys.PrivateKey, sighashType uint32) ([]byte, error) {
	if i < 0 || i >= len(s.inputs) {
		return nil, fmt.Errorf("input index %d out of bounds (have %d inputs)",
			i, len(s.inputs))
	}
	txi := s.inputs[i]

	pub := key.PublicKey()
	digest, err := s.hasher.PreimageHash(s.coin, s.tx, txi, pub.Hash160(), sighashType)
	if err != nil {
		return nil, fmt.Errorf("computing sighash for input %d: %w", i, err)
	}

	signature := append(key.Sign(digest), byte(sighashType))

	if txi.ScriptType == sighash.SpendAddress && txi.Multisig == nil {
		scriptSig, err := script.BuildP2PKHSigScript(signature, pub.Bytes())
		if err != nil {
			return nil, fmt.Errorf("building scriptSig for input %d: %w", i, err)
		}
		s.scriptSigs[i] = scriptSig
	}

	log.Debugf("signed input %d: sighash=%x", i, digest)
	return signature, nil
}

// Serialize writes the complete raw transaction: overwintered header, inputs
// with their scriptSigs, outputs, and the version's footer. Inputs that were
// not signed here carry an empty scriptSig.
func (s *Signer) Serialize(w io.Writer) error {
	if err := overwinter.WriteTxHeader(w, s.tx); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if err := txwire.WriteCompactSize(w, uint64(len(s.inputs))); err != nil {
		return err
	}
	for i, txi := range s.inputs {
		if err := txwire.WriteBytesReversed(w, txi.PrevHash); err != nil {
			return fmt.Errorf("writing input %d: %w", i, err)
		}
		if err := txwire.WriteUint32(w, txi.PrevIndex); err != nil {
			return err
		}
		if err := txwire.WriteBytesPrefixed(w, s.scriptSigs[i]); err != nil {
			return err
		}
		if err := txwire.WriteUint32(w, txi.Sequence); err != nil {
			return err
		}
	}

	if err := txwire.WriteCompactSize(w, uint64(len(s.outputs))); err != nil {
		return err
	}
	for i, txo := range s.outputs {
		if err := txwire.WriteBytes(w, txo.Serialize()); err != nil {
			return fmt.Errorf("writing output %d: %w", i, err)
		}
	}

	if err := overwinter.WriteTxFooter(w, s.tx); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}
	return nil
}
