package api

import (
	"github.com/Maphikza/btc-tx-broadcaster/internal/broadcast"
	"github.com/Maphikza/btc-tx-broadcaster/internal/network"
)

type API struct {
	Service       *broadcast.Service
	Network       network.Network
	AllowedOrigin string
	JWTKey        []byte
}

type HealthResponse struct {
	Status  string `json:"status"`
	Network string `json:"network"`
}

type contextKey string

const requestIDKey contextKey = "requestID"
