package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi"

	"gostablebridge/types"
)

func (h *Handler) MonitoringMetrics(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, h.Svc.Monitor.Metrics(r.Context()), http.StatusOK)
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	rng := types.TimeRange(chi.URLParam(r, "range"))

	analytics, err := h.Svc.Analytics.BridgeAnalytics(r.Context(), rng)
	if err != nil {
		log.Printf("Error computing bridge analytics: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "range",
			Message: "Time range must be day, week or month",
		}, http.StatusBadRequest)
		return
	}

	responseJSON(w, analytics, http.StatusOK)
}
