package handlers

import (
	"net/http"
)

func (h *Handler) Chains(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, h.Svc.Registry.List(), http.StatusOK)
}
