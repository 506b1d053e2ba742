package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi"
)

func (h *Handler) RequestConsensus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return
	}

	result, err := h.Svc.Consensus.RequestConsensus(r.Context(), id, payload)
	if err != nil {
		// retryable by contract, tell the caller so
		log.Printf("Error requesting consensus for %s: %s", id, err.Error())
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Failed to achieve validator consensus",
		}, http.StatusServiceUnavailable)
		return
	}

	responseJSON(w, result, http.StatusOK)
}

func (h *Handler) GetConsensus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result := h.Svc.Consensus.GetValidationResult(id)
	if result == nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "No validation result",
		}, http.StatusNotFound)
		return
	}

	responseJSON(w, result, http.StatusOK)
}

func (h *Handler) Validators(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, h.Svc.Consensus.ActiveValidators(), http.StatusOK)
}
