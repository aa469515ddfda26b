// Package coin defines the static per-network parameters consumed by the
// signing flow and the sighash engine.
//
// Parameters are immutable once constructed. The engine only branches on the
// Overwintered flag; the remaining fields describe the transparent address
// encoding and are carried for address-handling callers.
package coin

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params holds the consensus and address parameters of one network.
type Params struct {
	Name             string `yaml:"name"`              // Canonical lowercase network name
	Shortcut         string `yaml:"shortcut"`          // Ticker symbol (e.g. ZEC)
	Overwintered     bool   `yaml:"overwintered"`      // Network uses the overwintered tx format
	AddressTypeP2PKH uint16 `yaml:"address_type"`      // Two-byte P2PKH address prefix
	AddressTypeP2SH  uint16 `yaml:"address_type_p2sh"` // Two-byte P2SH address prefix
	Slip44           uint32 `yaml:"slip44"`            // SLIP 44 coin type
}

// Built-in networks.
var (
	// Zcash mainnet.
	Zcash = &Params{
		Name:             "zcash",
		Shortcut:         "ZEC",
		Overwintered:     true,
		AddressTypeP2PKH: 0x1CB8,
		AddressTypeP2SH:  0x1CBD,
		Slip44:           133,
	}

	// ZcashTestnet is the Zcash test network.
	ZcashTestnet = &Params{
		Name:             "zcash-testnet",
		Shortcut:         "TAZ",
		Overwintered:     true,
		AddressTypeP2PKH: 0x1D25,
		AddressTypeP2SH:  0x1CBA,
		Slip44:           1,
	}
)

var byName = map[string]*Params{
	Zcash.Name:        Zcash,
	ZcashTestnet.Name: ZcashTestnet,
}

// ByName returns the built-in parameters for a network name.
func ByName(name string) (*Params, error) {
	p, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", name)
	}
	return p, nil
}

// Load reads network parameters from a YAML definition file. This is how
// deployments describe networks that are not built in.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network definition: %w", err)
	}

	p := &Params{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing network definition: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("network definition %s has no name", path)
	}

	return p, nil
}
