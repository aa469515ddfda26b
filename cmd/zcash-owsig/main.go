// zcash-owsig CLI - overwintered transaction sighash and signing tool
//
// Computes ZIP 143 / ZIP 243 signature hashes for v3 (Overwinter) and v4
// (Sapling) transactions described in a YAML file, and signs transparent
// inputs with a WIF key.
//
// Example usage:
//
//	# Compute the sighash for input 0
//	zcash-owsig sighash tx.yaml 0
//
//	# Sign input 0 and print the raw transaction
//	zcash-owsig sign tx.yaml 0 <wif-key>
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/btcsuite/btclog"
	"gopkg.in/yaml.v3"

	"github.com/suffix-labs/zcash-owsig/pkg/coin"
	"github.com/suffix-labs/zcash-owsig/pkg/keys"
	"github.com/suffix-labs/zcash-owsig/pkg/overwinter"
	"github.com/suffix-labs/zcash-owsig/pkg/sighash"
	"github.com/suffix-labs/zcash-owsig/pkg/signer"
)

const appVersion = "0.1.0"

func main() {
	if os.Getenv("OWSIG_DEBUG") != "" {
		backend := btclog.NewBackend(os.Stderr)
		logger := backend.Logger("SIGN")
		logger.SetLevel(btclog.LevelTrace)
		signer.UseLogger(logger)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch command := os.Args[1]; command {
	case "sighash":
		err = cmdSighash(os.Args[2:])
	case "sign":
		err = cmdSign(os.Args[2:])
	case "version":
		fmt.Printf("zcash-owsig %s\n", appVersion)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`zcash-owsig - overwintered transaction sighash and signing tool

Usage:
  zcash-owsig <command> [options]

Commands:
  sighash <tx.yaml> <input-index>          Compute an input's signature hash
  sign    <tx.yaml> <input-index> <wif>    Sign an input and print the raw tx
  version                                  Show version information
  help                                     Show this help message

The transaction description is YAML:

  network: zcash            # or network_file: path/to/params.yaml
  version: 4
  version_group_id: 0x892F2085
  branch_id: 0              # 0 selects the version's default branch
  lock_time: 0
  expiry: 400000
  inputs:
    - prev_hash: <64 hex chars, display order>
      prev_index: 0
      sequence: 0xFFFFFFFF
      amount: 100000000
      script_type: p2pkh
      pubkey_hash: <40 hex chars>   # needed by the sighash command
  outputs:
    - amount: 99990000
      script_pubkey: <hex>

Set OWSIG_DEBUG=1 for trace logging on stderr.`)
}

// txDocument is the YAML form of a transaction description.
type txDocument struct {
	Network        string `yaml:"network"`
	NetworkFile    string `yaml:"network_file"`
	Version        uint32 `yaml:"version"`
	VersionGroupID uint32 `yaml:"version_group_id"`
	BranchID       uint32 `yaml:"branch_id"`
	LockTime       uint32 `yaml:"lock_time"`
	Expiry         uint32 `yaml:"expiry"`

	Inputs  []txInputDoc  `yaml:"inputs"`
	Outputs []txOutputDoc `yaml:"outputs"`
}

type txInputDoc struct {
	PrevHash   string   `yaml:"prev_hash"`
	PrevIndex  uint32   `yaml:"prev_index"`
	Sequence   uint32   `yaml:"sequence"`
	Amount     uint64   `yaml:"amount"`
	ScriptType string   `yaml:"script_type"`
	PubKeyHash string   `yaml:"pubkey_hash"`
	PubKeys    []string `yaml:"pubkeys"`
	Threshold  int      `yaml:"threshold"`
}

type txOutputDoc struct {
	Amount       uint64 `yaml:"amount"`
	ScriptPubKey string `yaml:"script_pubkey"`
}

type parsedTx struct {
	coin       *coin.Params
	header     *sighash.TxHeader
	inputs     []*sighash.TxInput
	outputs    []*sighash.TxOutput
	pubKeyHash [][]byte // per-input hash from the description, may be nil
}

func loadTxDocument(path string) (*parsedTx, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := &txDocument{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	var coinParams *coin.Params
	if doc.NetworkFile != "" {
		coinParams, err = coin.Load(doc.NetworkFile)
	} else {
		coinParams, err = coin.ByName(doc.Network)
	}
	if err != nil {
		return nil, err
	}

	tx := &parsedTx{
		coin: coinParams,
		header: &sighash.TxHeader{
			Version:        doc.Version,
			VersionGroupID: doc.VersionGroupID,
			BranchID:       doc.BranchID,
			LockTime:       doc.LockTime,
			Expiry:         doc.Expiry,
		},
	}

	for i, in := range doc.Inputs {
		txi := &sighash.TxInput{
			PrevIndex: in.PrevIndex,
			Sequence:  in.Sequence,
			Amount:    in.Amount,
		}
		if txi.PrevHash, err = hex.DecodeString(in.PrevHash); err != nil {
			return nil, fmt.Errorf("input %d: invalid prev_hash: %w", i, err)
		}

		switch in.ScriptType {
		case "p2pkh", "":
			txi.ScriptType = sighash.SpendAddress
		case "multisig":
			txi.ScriptType = sighash.SpendMultisig
			descriptor := &sighash.MultisigDescriptor{M: in.Threshold}
			for _, pk := range in.PubKeys {
				pubKey, err := hex.DecodeString(pk)
				if err != nil {
					return nil, fmt.Errorf("input %d: invalid pubkey: %w", i, err)
				}
				descriptor.PubKeys = append(descriptor.PubKeys, pubKey)
			}
			txi.Multisig = descriptor
		default:
			return nil, fmt.Errorf("input %d: unknown script_type %q", i, in.ScriptType)
		}

		var pubKeyHash []byte
		if in.PubKeyHash != "" {
			if pubKeyHash, err = hex.DecodeString(in.PubKeyHash); err != nil {
				return nil, fmt.Errorf("input %d: invalid pubkey_hash: %w", i, err)
			}
		}

		tx.inputs = append(tx.inputs, txi)
		tx.pubKeyHash = append(tx.pubKeyHash, pubKeyHash)
	}

	for i, out := range doc.Outputs {
		txo := &sighash.TxOutput{Amount: out.Amount}
		if txo.ScriptPubKey, err = hex.DecodeString(out.ScriptPubKey); err != nil {
			return nil, fmt.Errorf("output %d: invalid script_pubkey: %w", i, err)
		}
		tx.outputs = append(tx.outputs, txo)
	}

	return tx, nil
}

func parseInputIndex(arg string, count int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= count {
		return 0, fmt.Errorf("invalid input index %q (transaction has %d inputs)", arg, count)
	}
	return i, nil
}

func cmdSighash(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: zcash-owsig sighash <tx.yaml> <input-index>")
	}

	tx, err := loadTxDocument(args[0])
	if err != nil {
		return err
	}
	i, err := parseInputIndex(args[1], len(tx.inputs))
	if err != nil {
		return err
	}

	hasher, err := overwinter.NewSigHasher(tx.header, tx.coin)
	if err != nil {
		return err
	}
	for _, txi := range tx.inputs {
		hasher.AddPrevout(txi.PrevHash, txi.PrevIndex)
		hasher.AddSequence(txi.Sequence)
	}
	for _, txo := range tx.outputs {
		hasher.AddOutput(txo.Serialize())
	}

	digest, err := hasher.PreimageHash(tx.coin, tx.header, tx.inputs[i],
		tx.pubKeyHash[i], sighash.SighashAll)
	if err != nil {
		return err
	}

	fmt.Printf("sighash: %x\n", digest)
	return nil
}

func cmdSign(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: zcash-owsig sign <tx.yaml> <input-index> <wif>")
	}

	tx, err := loadTxDocument(args[0])
	if err != nil {
		return err
	}
	i, err := parseInputIndex(args[1], len(tx.inputs))
	if err != nil {
		return err
	}
	key, err := keys.ParseWIF(args[2])
	if err != nil {
		return err
	}

	s, err := signer.New(tx.coin, tx.header)
	if err != nil {
		return err
	}
	for _, txi := range tx.inputs {
		if err := s.AddInput(txi); err != nil {
			return err
		}
	}
	for _, txo := range tx.outputs {
		s.AddOutput(txo)
	}

	signature, err := s.SignInput(i, key, sighash.SighashAll)
	if err != nil {
		return err
	}
	fmt.Printf("signature: %x\n", signature)

	raw := new(bytes.Buffer)
	if err := s.Serialize(raw); err != nil {
		return err
	}
	fmt.Printf("rawtx: %x\n", raw.Bytes())
	return nil
}
