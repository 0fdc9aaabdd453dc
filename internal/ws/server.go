// Package ws pushes encoded state snapshots to watch-only WebSocket clients.
// There is no command channel on this transport; players use the TCP
// protocol.
package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"itemrush/internal/broadcast"
	"itemrush/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development; tighten in production
		return true
	},
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	EnableCompression: true,
}

// Server streams every published snapshot as a text frame to each connected
// watcher.
type Server struct {
	feed *broadcast.Feed
}

// New creates a WebSocket server bound to the state feed.
func New(feed *broadcast.Feed) *Server {
	return &Server{feed: feed}
}

// ListenAndServe blocks serving watch connections on its own port.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWatch)
	log.Printf("websocket server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()
	conn.EnableWriteCompression(true)
	log.Printf("watcher connected: %s", conn.RemoteAddr())

	// Discard anything the client sends; the read loop exists only to notice
	// the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	states, cancel := s.feed.Subscribe()
	defer cancel()
	for {
		select {
		case st := <-states:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(game.Encode(st))); err != nil {
				log.Printf("watcher %s dropped: %v", conn.RemoteAddr(), err)
				return
			}
		case <-done:
			log.Printf("watcher %s disconnected", conn.RemoteAddr())
			return
		}
	}
}
