package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	ethav "github.com/KOREAN139/ethereum-address-validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi"

	"gostablebridge/bridge"
)

func (h *Handler) SubmitBridge(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading request body: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	var req bridge.BridgeRequest
	if err = json.Unmarshal(body, &req); err != nil {
		log.Printf("Error unmarshalling request body: %s\n", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot unmarshal input JSON",
		}, http.StatusBadRequest)
		return
	}

	if err := ethav.Validate(common.HexToAddress(req.DestAddress).Hex()); err != nil {
		log.Printf("Error validating destination address '%s': %s\n", req.DestAddress, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "destAddress",
			Message: "No destination address or invalid address provided",
		}, http.StatusBadRequest)
		return
	}

	tx, avail, err := h.Svc.InitiateBridge(r.Context(), req)
	if err != nil {
		if errors.Is(err, bridge.ErrChainNotFound) {
			responseJSON(w, &APIResponse{
				Status:  "error",
				Field:   "chain",
				Message: "Chain not supported",
			}, http.StatusBadRequest)
			return
		}
		log.Printf("Error initiating bridge: %s", err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot initiate bridge transfer",
		}, http.StatusInternalServerError)
		return
	}

	if avail != nil {
		// liquidity shortfall is an expected outcome, answer with the
		// actionable suggestion
		responseJSON(w, avail, http.StatusConflict)
		return
	}

	responseJSON(w, tx, http.StatusCreated)
}

func (h *Handler) GetBridgeTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tx, err := h.Svc.GetTransaction(r.Context(), id)
	if err != nil {
		log.Printf("Error finding transaction %s: %s", id, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Cannot look up transaction",
		}, http.StatusInternalServerError)
		return
	}
	if tx == nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Transaction not found",
		}, http.StatusNotFound)
		return
	}

	responseJSON(w, tx, http.StatusOK)
}
