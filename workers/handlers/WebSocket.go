package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gostablebridge/types"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeTimeout = 10 * time.Second

// WebSocket upgrades the connection and registers the client as a live
// subscriber for one transaction. Updates arrive as JSON frames; closing the
// socket unsubscribes.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	txID := r.URL.Query().Get("transactionId")
	if txID == "" {
		responseJSON(w, &APIResponse{
			Status:  "error",
			Field:   "transactionId",
			Message: "transactionId is required",
		}, http.StatusBadRequest)
		return
	}

	// the hub key must be unique per connection: two sockets presenting the
	// same subscriberId would otherwise overwrite each other's deliverer and
	// the first disconnect would tear down the survivor
	subscriberID := uuid.New().String()
	if prefix := r.URL.Query().Get("subscriberId"); prefix != "" {
		subscriberID = prefix + "/" + subscriberID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading websocket: %s", err.Error())
		return
	}

	// gorilla connections allow one concurrent writer
	var writeMu sync.Mutex

	h.Svc.Hub.SetDeliverer(subscriberID, func(update types.TransactionUpdate) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(update)
	})
	h.Svc.Hub.Subscribe(txID, subscriberID)

	// drain frames to observe disconnect
	go func() {
		defer func() {
			h.Svc.Hub.RemoveSubscriber(subscriberID)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
