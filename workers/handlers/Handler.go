package handlers

import "gostablebridge/bridge"

// Handler exposes the engine's operations over HTTP. One service instance,
// no ambient globals.
type Handler struct {
	Svc *bridge.Service
}

func New(svc *bridge.Service) *Handler {
	return &Handler{Svc: svc}
}
