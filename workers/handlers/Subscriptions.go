package handlers

import (
	"encoding/json"
	"io"
	"net/http"
)

type subscriptionRequest struct {
	TransactionID string `json:"transactionId"`
	SubscriberID  string `json:"subscriberId"`
}

func decodeSubscription(w http.ResponseWriter, r *http.Request) (subscriptionRequest, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "Error reading request body",
		}, http.StatusBadRequest)
		return subscriptionRequest{}, false
	}

	var req subscriptionRequest
	if err := json.Unmarshal(body, &req); err != nil || req.TransactionID == "" || req.SubscriberID == "" {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Message: "transactionId and subscriberId are required",
		}, http.StatusBadRequest)
		return subscriptionRequest{}, false
	}
	return req, true
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubscription(w, r)
	if !ok {
		return
	}
	h.Svc.Hub.Subscribe(req.TransactionID, req.SubscriberID)
	responseJSON(w, &APIStateResponse{Status: "ok"}, http.StatusOK)
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSubscription(w, r)
	if !ok {
		return
	}
	h.Svc.Hub.Unsubscribe(req.TransactionID, req.SubscriberID)
	responseJSON(w, &APIStateResponse{Status: "ok"}, http.StatusOK)
}

func (h *Handler) SubscriptionStats(w http.ResponseWriter, r *http.Request) {
	responseJSON(w, h.Svc.Hub.Stats(), http.StatusOK)
}
