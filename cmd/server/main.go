// The itemrush server: runs the authoritative simulation loop and exposes it
// over a TCP command protocol and a watch-only WebSocket stream.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"itemrush/internal/broadcast"
	"itemrush/internal/engine"
	"itemrush/internal/game"
	"itemrush/internal/server"
	"itemrush/internal/store"
	"itemrush/internal/ws"
)

func main() {
	port := flag.Int("port", game.DefaultTCPPort, "TCP game protocol port")
	wsPort := flag.Int("ws-port", game.DefaultWSPort, "watch-only WebSocket port")
	dataDir := flag.String("data-dir", "data", "directory for passwords, results and game transcripts")
	flag.Parse()
	if env := os.Getenv("ITEMRUSH_DATA_DIR"); env != "" {
		*dataDir = env
	}

	passwords, err := store.OpenPasswords(filepath.Join(*dataDir, "passwords.txt"))
	if err != nil {
		log.Fatalf("open passwords: %v", err)
	}
	results, err := store.OpenTopResults(filepath.Join(*dataDir, "top_results.txt"))
	if err != nil {
		log.Fatalf("open top results: %v", err)
	}

	feed := broadcast.NewFeed()
	moves := make(chan game.Move, game.MoveQueueCap)

	runner := engine.NewRunner(feed, moves, results, filepath.Join(*dataDir, "games"))
	go func() {
		if err := runner.Run(); err != nil {
			log.Fatalf("engine: %v", err)
		}
	}()

	go func() {
		if err := ws.New(feed).ListenAndServe(fmt.Sprintf(":%d", *wsPort)); err != nil {
			log.Fatalf("websocket server: %v", err)
		}
	}()

	srv := server.New(feed, moves, passwords)
	if err := srv.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("tcp server: %v", err)
	}
}
