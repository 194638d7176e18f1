package broadcast

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Backend is the node the service talks to.
type Backend interface {
	GetBlockHeight() (uint64, error)
	SubmitRawTransaction(rawHex string) (chainhash.Hash, error)
}

// Recorder receives every broadcast outcome after the response is built.
type Recorder interface {
	Record(requestID string, resp Response) error
}

type Request struct {
	RawTx string `json:"raw_tx"`
}

type Response struct {
	Status       string  `json:"status"`
	TxID         TxID    `json:"txid"`
	CurrentBlock uint64  `json:"current_block"`
	Error        *string `json:"error"`
}

// TxID is a transaction id in display byte order. It encodes to JSON as an
// array of integers, or null when empty.
type TxID []byte

func (id TxID) MarshalJSON() ([]byte, error) {
	if id == nil {
		return []byte("null"), nil
	}
	out := make([]int, len(id))
	for i, b := range id {
		out[i] = int(b)
	}
	return json.Marshal(out)
}

func (id *TxID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = nil
		return nil
	}
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("txid byte %d out of range: %d", i, v)
		}
		b[i] = byte(v)
	}
	*id = b
	return nil
}

// Hash returns the id as a chainhash.Hash, which stores bytes in internal
// order. ok is false if the id is not 32 bytes long.
func (id TxID) Hash() (h chainhash.Hash, ok bool) {
	if len(id) != chainhash.HashSize {
		return h, false
	}
	copy(h[:], ReverseBytes(id))
	return h, true
}

// String returns the id as hex. For a 32 byte id this matches
// chainhash.Hash.String of the internal-order hash.
func (id TxID) String() string {
	return hex.EncodeToString(id)
}
