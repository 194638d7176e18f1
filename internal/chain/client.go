package chain

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/Maphikza/btc-tx-broadcaster/internal/network"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
)

// ConnDescriptor describes how to reach the bitcoind JSON-RPC interface.
// It is built once at startup and never mutated.
type ConnDescriptor struct {
	Network network.Network
	URL     string
	User    string
	Pass    string
}

// Endpoint returns <host>:<port> for the descriptor. The port always comes
// from the network's RPC port table.
func (d ConnDescriptor) Endpoint() (string, error) {
	u, err := d.parseURL()
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("rpc url %q has no host", d.URL)
	}
	return net.JoinHostPort(host, strconv.Itoa(int(d.Network.RPCPort()))), nil
}

func (d ConnDescriptor) parseURL() (*url.URL, error) {
	raw := d.URL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid rpc url %q: %w", d.URL, err)
	}
	return u, nil
}

// Client wraps an rpcclient.Client. It holds no mutable state of its own and
// is shared by every request handler.
type Client struct {
	rpc  *rpcclient.Client
	desc ConnDescriptor
	url  string
}

// NewClient connects to the node described by desc using basic auth.
func NewClient(desc ConnDescriptor) (*Client, error) {
	host, err := desc.Endpoint()
	if err != nil {
		return nil, err
	}
	return newClient(desc, host)
}

func newClient(desc ConnDescriptor, host string) (*Client, error) {
	u, err := desc.parseURL()
	if err != nil {
		return nil, err
	}

	disableTLS := true
	switch u.Scheme {
	case "http", "tcp":
	case "https":
		disableTLS = false
	default:
		return nil, fmt.Errorf("unsupported rpc url scheme %q", u.Scheme)
	}

	// In HTTP POST mode rpcclient posts to scheme://Host, so a wallet path
	// has to ride along on the host.
	host += strings.TrimRight(u.Path, "/")

	connCfg := &rpcclient.ConnConfig{
		Host:         host,
		User:         desc.User,
		Pass:         desc.Pass,
		Params:       desc.Network.Params().Name,
		HTTPPostMode: true,
		DisableTLS:   disableTLS,
	}

	rpc, err := rpcclient.New(connCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating rpc client: %w", err)
	}
	scheme := "http"
	if !disableTLS {
		scheme = "https"
	}
	return &Client{rpc: rpc, desc: desc, url: scheme + "://" + host}, nil
}

// URL returns the address rpc calls are posted to.
func (c *Client) URL() string {
	return c.url
}

// Network returns the network the client was configured for.
func (c *Client) Network() network.Network {
	return c.desc.Network
}

// GetBlockHeight returns the node's current block count.
func (c *Client) GetBlockHeight() (uint64, error) {
	count, err := c.rpc.GetBlockCount()
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("node reported negative block count %d", count)
	}
	return uint64(count), nil
}

// SubmitRawTransaction hands rawHex to sendrawtransaction unchanged and
// returns the txid in internal byte order.
func (c *Client) SubmitRawTransaction(rawHex string) (chainhash.Hash, error) {
	param, err := json.Marshal(rawHex)
	if err != nil {
		return chainhash.Hash{}, err
	}

	result, err := c.rpc.RawRequest("sendrawtransaction", []json.RawMessage{param})
	if err != nil {
		return chainhash.Hash{}, err
	}

	var txid string
	if err := json.Unmarshal(result, &txid); err != nil {
		return chainhash.Hash{}, fmt.Errorf("unexpected sendrawtransaction result %s: %w", result, err)
	}

	// The node prints txids in display order; NewHashFromStr flips them back.
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("invalid txid %q from node: %w", txid, err)
	}
	return *hash, nil
}

// Shutdown stops the underlying rpc client.
func (c *Client) Shutdown() {
	c.rpc.Shutdown()
	c.rpc.WaitForShutdown()
}
