package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Maphikza/btc-tx-broadcaster/internal/broadcast"
	"github.com/Maphikza/btc-tx-broadcaster/internal/logger"
)

func NewAPI(service *broadcast.Service, opts ...Option) *API {
	a := &API{Service: service, AllowedOrigin: "*"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BroadcastHandler expects MethodMiddleware to have admitted only POST.
func (a *API) BroadcastHandler(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	requestID := RequestIDFromContext(r.Context())
	logger.Info("Received broadcast request", "request_id", requestID)

	resp, code := a.Service.Broadcast(requestID, req)
	writeJSON(w, code, resp)
}

// decodeRequest reads exactly one JSON object holding a string raw_tx.
func decodeRequest(body io.Reader) (broadcast.Request, error) {
	var in struct {
		RawTx *string `json:"raw_tx"`
	}
	dec := json.NewDecoder(body)
	if err := dec.Decode(&in); err != nil {
		return broadcast.Request{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return broadcast.Request{}, errors.New("trailing data after request object")
	}
	if in.RawTx == nil {
		return broadcast.Request{}, errors.New("missing field `raw_tx`")
	}
	return broadcast.Request{RawTx: *in.RawTx}, nil
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Invalid request method", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Network: a.Network.String()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to write response", "error", err)
	}
}
