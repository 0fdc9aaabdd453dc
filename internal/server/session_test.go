package server

import (
	"bufio"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"itemrush/internal/broadcast"
	"itemrush/internal/game"
	"itemrush/internal/store"
)

type sessionEnv struct {
	feed      *broadcast.Feed
	moves     chan game.Move
	passwords *store.Passwords
	client    net.Conn
	br        *bufio.Reader
}

// startSession wires a Server to one in-memory connection and returns the
// client end.
func startSession(t *testing.T) *sessionEnv {
	t.Helper()
	passwords, err := store.OpenPasswords(filepath.Join(t.TempDir(), "passwords.txt"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { passwords.Close() })

	feed := broadcast.NewFeed()
	moves := make(chan game.Move, 64)
	srv := New(feed, moves, passwords)

	client, serverEnd := net.Pipe()
	go srv.HandleConn(serverEnd)
	t.Cleanup(func() { client.Close() })

	return &sessionEnv{
		feed:      feed,
		moves:     moves,
		passwords: passwords,
		client:    client,
		br:        bufio.NewReader(client),
	}
}

func (e *sessionEnv) readLine(t *testing.T) string {
	t.Helper()
	e.client.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := e.br.ReadString('\n')
	if err != nil {
		t.Fatalf("read line: %v", err)
	}
	return strings.TrimSuffix(line, "\n")
}

func (e *sessionEnv) send(t *testing.T, line string) {
	t.Helper()
	e.client.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(e.client, "%s\n", line); err != nil {
		t.Fatalf("send %q: %v", line, err)
	}
}

func (e *sessionEnv) readSnapshot(t *testing.T) game.State {
	t.Helper()
	var lines []string
	for {
		line := e.readLine(t)
		lines = append(lines, line)
		if strings.TrimSpace(line) == "END_STATE" {
			break
		}
	}
	st, err := game.Decode(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return st
}

// publishLoop re-publishes the current state until the test finishes, so the
// session always has a fresh snapshot regardless of when it subscribed.
func (e *sessionEnv) publishLoop(t *testing.T, initial game.State) func(game.State) {
	t.Helper()
	var mu sync.Mutex
	current := initial
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			mu.Lock()
			st := current.Clone()
			mu.Unlock()
			e.feed.Publish(st)
			time.Sleep(5 * time.Millisecond)
		}
	}()
	return func(st game.State) {
		mu.Lock()
		current = st
		mu.Unlock()
	}
}

func (e *sessionEnv) nextMove(t *testing.T) game.Move {
	t.Helper()
	select {
	case m := <-e.moves:
		return m
	case <-time.After(5 * time.Second):
		t.Fatal("no move arrived")
		return game.Move{}
	}
}

func baseState(players ...game.Player) game.State {
	return game.State{
		Width:    game.StartWidth,
		Height:   game.StartHeight,
		Turn:     1,
		MaxTurns: game.MaxTurns,
		GameID:   "game-session-test",
		Players:  players,
	}
}

func TestHandshakeRejectsUnknownRole(t *testing.T) {
	e := startSession(t)
	if got := e.readLine(t); got != "HELLO" {
		t.Fatalf("greeting = %q, want HELLO", got)
	}
	e.send(t, "BOGUS")
	if got := e.readLine(t); got != "Expected 'WATCH' or 'PLAY', got 'BOGUS'" {
		t.Errorf("rejection = %q", got)
	}
	// The handshake keeps going after a rejection.
	e.send(t, "WATCH")
	e.publishLoop(t, baseState())
	st := e.readSnapshot(t)
	if st.GameID != "game-session-test" {
		t.Errorf("snapshot game id = %q", st.GameID)
	}
}

func TestWatchStreamsSnapshots(t *testing.T) {
	e := startSession(t)
	e.readLine(t) // HELLO
	e.send(t, "WATCH")
	update := e.publishLoop(t, baseState())

	st := e.readSnapshot(t)
	if st.Turn != 1 {
		t.Fatalf("turn = %d, want 1", st.Turn)
	}
	update(func() game.State {
		s := baseState()
		s.Turn = 2
		return s
	}())
	for st.Turn != 2 {
		st = e.readSnapshot(t)
		if st.Turn > 2 {
			t.Fatalf("turn = %d, never saw 2", st.Turn)
		}
	}
}

func TestPlayFlow(t *testing.T) {
	e := startSession(t)
	e.readLine(t) // HELLO
	e.send(t, "PLAY alice secret")
	update := e.publishLoop(t, baseState())

	// Player not in the state yet: the session queues neutral moves instead
	// of sending snapshots.
	m := e.nextMove(t)
	if m.Name != "alice" || m.Target != (game.Point{}) {
		t.Fatalf("neutral move = %+v", m)
	}

	// The "engine" spawns the player; now snapshots flow, player first.
	update(baseState(
		game.Player{Name: "bystander", Pos: game.Point{X: 50, Y: 50}, Radius: game.PlayerRadius},
		game.Player{Name: "alice", Pos: game.Point{X: 700, Y: 700}, Target: game.Point{X: 700, Y: 700}, Radius: game.PlayerRadius},
	))
	var st game.State
	for {
		st = e.readSnapshot(t)
		if len(st.Players) > 0 {
			break
		}
	}
	if st.Players[0].Name != "alice" {
		t.Fatalf("first player = %q, want alice", st.Players[0].Name)
	}

	// Steer and verify the move reaches the queue.
	e.send(t, "GO 123 456")
	want := game.Move{Name: "alice", Target: game.Point{X: 123, Y: 456}}
	for {
		m := e.nextMove(t)
		if m == want {
			break
		}
		if m.Target != (game.Point{}) {
			t.Fatalf("unexpected move %+v", m)
		}
	}

	// An unknown command is rejected and the session continues.
	e.readSnapshot(t)
	e.send(t, "JUMP")
	if got := e.readLine(t); got != "UNKNOWN command 'JUMP', expected 'GO' or 'EXIT'" {
		t.Errorf("rejection = %q", got)
	}
	e.readSnapshot(t)
	e.send(t, "EXIT")
}

func TestPlayRejectsWrongPassword(t *testing.T) {
	e := startSession(t)
	e.readLine(t) // HELLO

	// Register bob out of band, then present a different password.
	if err := e.passwords.Check("bob", "right", "127.0.0.1"); err != nil {
		t.Fatal(err)
	}
	e.send(t, "PLAY bob wrong")
	if got := e.readLine(t); !strings.Contains(got, "Wrong password") {
		t.Errorf("rejection = %q", got)
	}
}

func TestPlayRejectsBadLogins(t *testing.T) {
	tests := []struct {
		name  string
		login string
		want  string
	}{
		{"too long", strings.Repeat("a", game.MaxLoginLen+1), "Login is too long"},
		{"non-ascii", "göpher", "printable ASCII"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := startSession(t)
			e.readLine(t) // HELLO
			e.send(t, "PLAY "+tt.login+" pw")
			if got := e.readLine(t); !strings.Contains(got, tt.want) {
				t.Errorf("rejection = %q, want mention of %q", got, tt.want)
			}
		})
	}
}

func TestPlayRejectsReservedPassword(t *testing.T) {
	e := startSession(t)
	e.readLine(t) // HELLO
	e.send(t, "PLAY carol GO")
	if got := e.readLine(t); !strings.Contains(got, "'GO'") {
		t.Errorf("rejection = %q", got)
	}
}
