package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"gostablebridge/bridge"
)

func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("sourceChain")
	dst := r.URL.Query().Get("destinationChain")

	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil || !amount.IsPositive() {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "amount",
			Message: "Amount must be a positive number",
		}, http.StatusBadRequest)
		return
	}

	estimate, err := h.Svc.Estimator.GetBridgeEstimate(src, dst, amount)
	if err != nil {
		if errors.Is(err, bridge.ErrChainNotFound) {
			responseJSON(w, &APIResponse{
				Status:  "error",
				Field:   "chain",
				Message: "Chain not supported",
			}, http.StatusBadRequest)
			return
		}
		log.Printf("Error computing bridge estimate: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot compute estimate",
		}, http.StatusInternalServerError)
		return
	}

	responseJSON(w, estimate, http.StatusOK)
}
