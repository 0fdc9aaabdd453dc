// An example bot client: connects as a player and always runs toward the
// nearest item. Useful for populating a server and as a reference for
// writing real clients.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"itemrush/internal/game"
	"itemrush/internal/server"
)

const reconnectDelay = time.Second

func main() {
	addr := flag.String("addr", fmt.Sprintf("127.0.0.1:%d", game.DefaultTCPPort), "server address")
	numBots := flag.Int("num-bots", 1, "number of concurrent bots")
	prefix := flag.String("name", "gobot-", "login prefix, bot index is appended")
	password := flag.String("password", "beep-boop", "password sent with PLAY")
	flag.Parse()

	var wg sync.WaitGroup
	for i := 0; i < *numBots; i++ {
		login := fmt.Sprintf("%s%d", *prefix, i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			runBot(*addr, login, *password)
		}()
	}
	wg.Wait()
}

// runBot plays games forever, reconnecting with a delay after any failure.
// Sessions end normally when the server rotates games, so a dropped
// connection is routine, not fatal.
func runBot(addr, login, password string) {
	for {
		if err := playOneGame(addr, login, password); err != nil {
			log.Printf("%s: session ended: %v", login, err)
		}
		time.Sleep(reconnectDelay)
	}
}

func playOneGame(addr, login, password string) error {
	tcp, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer tcp.Close()
	conn := server.NewConn(tcp)

	if err := conn.Expect("HELLO"); err != nil {
		return err
	}
	if err := conn.WriteLine(fmt.Sprintf("PLAY %s %s", login, password)); err != nil {
		return err
	}
	log.Printf("%s: joined %s", login, addr)
	for {
		st, err := readSnapshot(conn)
		if err != nil {
			return err
		}
		target := bestTarget(st)
		if err := conn.WriteLine(fmt.Sprintf("GO %d %d", target.X, target.Y)); err != nil {
			return err
		}
	}
}

// readSnapshot accumulates tokens up to the END_STATE sentinel and decodes
// them. A rejection line from the server surfaces here as a decode error.
func readSnapshot(conn *server.Conn) (game.State, error) {
	var tokens []string
	for {
		tok, err := conn.ReadToken()
		if err != nil {
			return game.State{}, err
		}
		tokens = append(tokens, tok)
		if tok == "END_STATE" {
			break
		}
	}
	return game.Decode(strings.Join(tokens, " "))
}
