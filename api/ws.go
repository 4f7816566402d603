package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"recipe-desk/logger"
	"recipe-desk/workspace"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspaceFor(w, r)
	if !ok {
		return
	}
	log := logger.FromContext(r.Context()).With("workspace", ws.ID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	outChan := make(chan workspace.Event, 256)
	kick := ws.Subscribe(outChan)  // kicks any prior client
	defer ws.Unsubscribe(outChan) // closes outChan, clears state if still owner

	snap := ws.Snapshot()
	if err := writeMsg(workspace.Event{Type: workspace.EventState, State: &snap}); err != nil {
		log.Warn("websocket state write failed", "error", err)
		return
	}

	// Pump events to the client until Unsubscribe closes outChan.
	go func() {
		for e := range outChan {
			if err := writeMsg(e); err != nil {
				return
			}
		}
	}()

	// Close the connection on workspace close or displacement so ReadJSON
	// below returns.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-ws.Done():
			writeMsg(workspace.Event{Type: workspace.EventClosed}) //nolint:errcheck
			conn.Close()
		case <-kick:
			// Displaced: no "closed" message, the workspace is still open.
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	for {
		var msg controlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := applyControl(ws, msg); err != nil {
			log.Debug("control rejected", "type", msg.Type, "error", err)
		}
	}
}
