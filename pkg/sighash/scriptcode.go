package sighash

import (
	"fmt"

	"github.com/suffix-labs/zcash-owsig/pkg/script"
)

// deriveScriptCode resolves the script bytes that stand in for the spent
// output's locking script inside the preimage.
//
// Multisig inputs resolve to the redeem script built from the descriptor's
// keys and threshold; plain address spends resolve to the canonical P2PKH
// script for the supplied pubkey hash. No other input shape is legal here.
func deriveScriptCode(txi *TxInput, pubKeyHash []byte) ([]byte, error) {
	if txi.Multisig != nil {
		scriptCode, err := script.BuildMultisig(txi.Multisig.PubKeys, txi.Multisig.M)
		if err != nil {
			return nil, fmt.Errorf("building multisig script code: %w", err)
		}
		return scriptCode, nil
	}

	if txi.ScriptType == SpendAddress {
		scriptCode, err := script.BuildP2PKH(pubKeyHash)
		if err != nil {
			return nil, fmt.Errorf("building p2pkh script code: %w", err)
		}
		return scriptCode, nil
	}

	return nil, &UnsupportedScriptTypeError{ScriptType: txi.ScriptType}
}
