package broadcast

import (
	"fmt"
	"net/http"

	"github.com/Maphikza/btc-tx-broadcaster/internal/logger"
)

type Service struct {
	backend  Backend
	recorder Recorder
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// WithRecorder attaches a recorder that sees every outcome.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// Broadcast looks up the current height, submits the transaction and shapes
// the response. The returned int is the HTTP status code to send.
func (s *Service) Broadcast(requestID string, req Request) (Response, int) {
	resp, code := s.broadcast(req)
	if s.recorder != nil {
		if err := s.recorder.Record(requestID, resp); err != nil {
			logger.Error("Failed to record broadcast", "request_id", requestID, "error", err)
		}
	}
	return resp, code
}

func (s *Service) broadcast(req Request) (Response, int) {
	currentBlock, err := s.backend.GetBlockHeight()
	if err != nil {
		logger.Error("Failed to get current block height", "error", err)
		return errorResponse(0, fmt.Sprintf("Failed to get current block height: %v", err)),
			http.StatusInternalServerError
	}

	hash, err := s.backend.SubmitRawTransaction(req.RawTx)
	if err != nil {
		logger.Error("Failed to broadcast transaction", "error", err)
		return errorResponse(currentBlock, err.Error()), http.StatusInternalServerError
	}

	logger.Info("Successfully broadcast transaction", "txid", hash.String(), "current_block", currentBlock)

	return Response{
		Status:       StatusSuccess,
		TxID:         ReverseBytes(hash[:]),
		CurrentBlock: currentBlock,
	}, http.StatusOK
}

func errorResponse(currentBlock uint64, msg string) Response {
	return Response{
		Status:       StatusError,
		CurrentBlock: currentBlock,
		Error:        &msg,
	}
}

// ReverseBytes returns a reversed copy of b.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
