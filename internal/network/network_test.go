package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNetwork(t *testing.T) {
	cases := map[string]Network{
		"bitcoin":  Bitcoin,
		"mainnet":  Bitcoin,
		"Main":     Bitcoin,
		"testnet":  Testnet,
		"TESTNET3": Testnet,
		"regtest":  Regtest,
		" signet ": Signet,
	}
	for name, want := range cases {
		got, err := ParseNetwork(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestParseNetwork_Unsupported(t *testing.T) {
	_, err := ParseNetwork("moonnet")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedNetwork)
	assert.Contains(t, err.Error(), "moonnet")
}

func TestRPCPort(t *testing.T) {
	assert.Equal(t, uint16(8332), Bitcoin.RPCPort())
	assert.Equal(t, uint16(18332), Testnet.RPCPort())
	assert.Equal(t, uint16(18443), Regtest.RPCPort())
	assert.Equal(t, uint16(38332), Signet.RPCPort())
}

func TestParams(t *testing.T) {
	assert.Equal(t, "mainnet", Bitcoin.Params().Name)
	assert.Equal(t, "testnet3", Testnet.Params().Name)
	assert.Equal(t, "regtest", Regtest.Params().Name)
	assert.Equal(t, "signet", Signet.Params().Name)
}

func TestString(t *testing.T) {
	for _, n := range All {
		parsed, err := ParseNetwork(n.String())
		require.NoError(t, err)
		assert.Equal(t, n, parsed)
	}
	assert.Equal(t, "network(9)", Network(9).String())
}
