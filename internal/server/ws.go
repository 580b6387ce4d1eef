package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler streams pipeline events to WebSocket clients as JSON, one
// message per event. Each client gets its own bus subscription, so a slow
// client loses events rather than stalling the pipeline or its peers.
type EventsHandler struct {
	bus *app.Bus
}

// NewEventsHandler creates an EventsHandler over the given bus.
func NewEventsHandler(bus *app.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.bus.Subscribe()
	defer cancel()

	// Reads only notice disconnects; clients send nothing meaningful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
