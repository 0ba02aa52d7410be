package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"marketsnap/internal/domain"
)

type Validator interface {
	ParseAssetKey(ticker, months string) (domain.AssetKey, error)
}

type Service interface {
	Snapshot(ctx context.Context, key domain.AssetKey) (domain.AggregatedSnapshot, error)
}

type Handler struct {
	validator Validator
	service   Service
}

func NewMarketHandler(validator Validator, service Service) *Handler {
	return &Handler{validator: validator, service: service}
}

type errorResponse struct {
	Error string `json:"error" example:"market data is temporarily unavailable"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}
