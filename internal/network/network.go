package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network selects which Bitcoin chain the RPC node serves.
type Network int

const (
	Bitcoin Network = iota
	Testnet
	Regtest
	Signet
)

var ErrUnsupportedNetwork = errors.New("unsupported network")

// All lists the supported networks in port-table order.
var All = []Network{Bitcoin, Testnet, Regtest, Signet}

var rpcPorts = map[Network]uint16{
	Bitcoin: 8332,
	Testnet: 18332,
	Regtest: 18443,
	Signet:  38332,
}

var names = map[Network]string{
	Bitcoin: "bitcoin",
	Testnet: "testnet",
	Regtest: "regtest",
	Signet:  "signet",
}

var aliases = map[string]Network{
	"bitcoin":  Bitcoin,
	"mainnet":  Bitcoin,
	"main":     Bitcoin,
	"testnet":  Testnet,
	"testnet3": Testnet,
	"regtest":  Regtest,
	"signet":   Signet,
}

// ParseNetwork maps a network name to its Network. Matching is case-insensitive.
func ParseNetwork(name string) (Network, error) {
	n, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, name)
	}
	return n, nil
}

// RPCPort returns the default bitcoind JSON-RPC port for the network.
func (n Network) RPCPort() uint16 {
	return rpcPorts[n]
}

// Params returns the chain parameters for the network.
func (n Network) Params() *chaincfg.Params {
	switch n {
	case Testnet:
		return &chaincfg.TestNet3Params
	case Regtest:
		return &chaincfg.RegressionNetParams
	case Signet:
		return &chaincfg.SigNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

func (n Network) String() string {
	if name, ok := names[n]; ok {
		return name
	}
	return fmt.Sprintf("network(%d)", int(n))
}
