package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"
)

func (h *Handler) CheckLiquidity(w http.ResponseWriter, r *http.Request) {
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

	responseJSON(w, h.Svc.Pools.CheckAvailability(src, dst, amount), http.StatusOK)
}

func (h *Handler) ListPools(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, h.Svc.Pools.ListPools(), http.StatusOK)
}

func (h *Handler) OptimizeLiquidity(w http.ResponseWriter, r *http.Request) {
	moved := h.Svc.Pools.OptimizeAllocation()
	responseJSON(w, map[string]int{"rebalancedPools": moved}, http.StatusOK)
}
