package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const unavailableMsg = "market data is temporarily unavailable"

// GetSnapshot godoc
// @Summary Rates and asset snapshot
// @Description Dollar rates for every channel plus the quote and daily closes of one asset.
// @Description Both halves are served from a short-lived cache; there is no partial response.
// @Tags Market
// @Produce json
// @Param ticker query string false "Asset ticker (alias t)" default(^GSPC)
// @Param months query int false "Trailing window in months (alias m)" default(1) minimum(1) maximum(120)
// @Success 200 {object} domain.AggregatedSnapshot
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /data [get]
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, err := h.validator.ParseAssetKey(firstOf(q.Get("ticker"), q.Get("t")), firstOf(q.Get("months"), q.Get("m")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.service.Snapshot(r.Context(), key)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetSnapshot", "ticker": key.Ticker, "months": key.Months}).Error("snapshot unavailable")
		writeError(w, http.StatusBadGateway, unavailableMsg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(snapshot)
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
