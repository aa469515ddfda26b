// Package overwinter bridges the ZIP 143/243 sighash engine into the generic
// transparent signing flow.
//
// It owns the version dispatch: a transaction's declared version selects the
// strategy (and the default consensus branch ID when the request leaves it
// unset), and the transaction header/footer serialized around the generic
// input/output sections is the overwintered layout rather than the plain
// Bitcoin one.
package overwinter

import (
	"io"

	"github.com/suffix-labs/zcash-owsig/pkg/coin"
	"github.com/suffix-labs/zcash-owsig/pkg/sighash"
	"github.com/suffix-labs/zcash-owsig/pkg/txwire"
)

// Default consensus branch IDs, used when the transaction leaves branch_id
// unset. A nonzero branch_id from the request is used verbatim so signing
// keeps working across network upgrades without a firmware release.
const (
	BranchIDOverwinter uint32 = 0x5BA81B19 // Overwinter network upgrade
	BranchIDSapling    uint32 = 0x76B809BB // Sapling network upgrade
)

// NewSigHasher selects the sighash strategy for the transaction's declared
// version and resolves its consensus branch ID.
//
// Calling this for a non-overwintered coin is a driving-flow bug and panics;
// an unknown version is a data error and returns *UnsupportedVersionError.
func NewSigHasher(tx *sighash.TxHeader, coinParams *coin.Params) (sighash.SigHasher, error) {
	if !coinParams.Overwintered {
		panic("overwinter: sighash strategy requested for non-overwintered coin " + coinParams.Name)
	}

	switch tx.Version {
	case 3:
		branchID := tx.BranchID
		if branchID == 0 {
			branchID = BranchIDOverwinter
		}
		return sighash.NewZip143(branchID), nil
	case 4:
		branchID := tx.BranchID
		if branchID == 0 {
			branchID = BranchIDSapling
		}
		return sighash.NewZip243(branchID), nil
	default:
		return nil, &sighash.UnsupportedVersionError{Version: tx.Version}
	}
}

// WriteTxHeader serializes the overwintered transaction header: the version
// with the overwintered flag set, then the version group ID.
func WriteTxHeader(w io.Writer, tx *sighash.TxHeader) error {
	if err := txwire.WriteUint32(w, tx.Version|sighash.OverwinteredFlag); err != nil {
		return err
	}
	return txwire.WriteUint32(w, tx.VersionGroupID)
}

// WriteTxFooter serializes the fields that follow the outputs: lock time,
// expiry height, and the empty shielded sections for the version.
func WriteTxFooter(w io.Writer, tx *sighash.TxHeader) error {
	if err := txwire.WriteUint32(w, tx.LockTime); err != nil {
		return err
	}

	switch tx.Version {
	case 3:
		if err := txwire.WriteUint32(w, tx.Expiry); err != nil {
			return err
		}
		return txwire.WriteCompactSize(w, 0) // nJoinSplit
	case 4:
		if err := txwire.WriteUint32(w, tx.Expiry); err != nil {
			return err
		}
		if err := txwire.WriteUint64(w, 0); err != nil { // valueBalance
			return err
		}
		if err := txwire.WriteCompactSize(w, 0); err != nil { // nShieldedSpend
			return err
		}
		if err := txwire.WriteCompactSize(w, 0); err != nil { // nShieldedOutput
			return err
		}
		return txwire.WriteCompactSize(w, 0) // nJoinSplit
	default:
		return &sighash.UnsupportedVersionError{Version: tx.Version}
	}
}
