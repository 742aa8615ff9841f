package server

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Loopback preview server; pages are served from the same process.
		return true
	},
}

// handleWS holds a websocket open and sends "reload" whenever a build
// publishes. Clients reconnect after each reload, picking up a fresh
// subscription.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", "server.ws_error").Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Debug().Str("event", "server.ws_connected").Str("remote", r.RemoteAddr).Msg("page connected")

	// The read pump surfaces client disconnects and processes close frames.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-disconnected:
			return
		case <-s.subscribe():
			if err := conn.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
				return
			}
		}
	}
}
