package server

import (
	"errors"
	"fmt"
	"log"
	"net"

	"itemrush/internal/broadcast"
	"itemrush/internal/game"
	"itemrush/internal/store"
)

// Server accepts TCP connections and runs one session goroutine per client.
// A session failure never touches the engine or other sessions.
type Server struct {
	feed      *broadcast.Feed
	moves     chan<- game.Move
	passwords *store.Passwords
}

// New creates a server bound to the state feed, the move queue and the
// credential store.
func New(feed *broadcast.Feed, moves chan<- game.Move, passwords *store.Passwords) *Server {
	return &Server{feed: feed, moves: moves, passwords: passwords}
}

// ListenAndServe blocks accepting connections until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	log.Printf("tcp server listening on %s", addr)
	for {
		tcp, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.HandleConn(tcp)
	}
}

// HandleConn runs a full session on an accepted connection and closes it
// afterwards.
func (s *Server) HandleConn(tcp net.Conn) {
	conn := NewConn(tcp)
	defer conn.Close()
	log.Printf("client connected: %s (%s)", conn.RemoteAddr(), conn.ID)
	if err := s.session(conn); err != nil {
		log.Printf("session %s ended: %v", conn.ID, err)
		return
	}
	log.Printf("session %s closed", conn.ID)
}

// session greets the client and dispatches on the declared role.
func (s *Server) session(conn *Conn) error {
	if err := conn.WriteLine("HELLO"); err != nil {
		return err
	}
	for {
		cmd, err := conn.ReadToken()
		if err != nil {
			return err
		}
		switch cmd {
		case "WATCH":
			return s.watch(conn)
		case "PLAY":
			return s.play(conn)
		default:
			if err := conn.WriteLine(fmt.Sprintf("Expected 'WATCH' or 'PLAY', got '%s'", cmd)); err != nil {
				return err
			}
		}
	}
}

// watch streams every published snapshot until the client goes away.
func (s *Server) watch(conn *Conn) error {
	states, cancel := s.feed.Subscribe()
	defer cancel()
	for st := range states {
		if err := conn.WriteLine(game.Encode(st)); err != nil {
			return err
		}
	}
	return nil
}

// play authenticates the client, then alternates snapshots and commands.
// Until the engine has spawned the player (the name is absent from the
// snapshot), a neutral move is queued instead of rendering, so the player
// materializes within a tick.
func (s *Server) play(conn *Conn) error {
	login, err := conn.ReadToken()
	if err != nil {
		return err
	}
	password, err := conn.ReadToken()
	if err != nil {
		return err
	}
	if err := validateLogin(login); err != nil {
		_ = conn.WriteLine(err.Error())
		return err
	}
	ip, _, err := net.SplitHostPort(conn.RemoteAddr())
	if err != nil {
		ip = conn.RemoteAddr()
	}
	if err := s.passwords.Check(login, password, ip); err != nil {
		_ = conn.WriteLine(err.Error())
		return err
	}
	log.Printf("player %s joined (%s)", login, conn.ID)

	states, cancel := s.feed.Subscribe()
	defer cancel()
	for st := range states {
		st = st.Clone()
		if !st.MakePlayerFirst(login) {
			s.moves <- game.Move{Name: login}
			continue
		}
		if err := conn.WriteLine(game.Encode(st)); err != nil {
			return err
		}
		cmd, err := conn.ReadToken()
		if err != nil {
			return err
		}
		switch cmd {
		case "GO":
			x, err := conn.ReadInt32()
			if err != nil {
				return err
			}
			y, err := conn.ReadInt32()
			if err != nil {
				return err
			}
			s.moves <- game.Move{Name: login, Target: game.Point{X: x, Y: y}}
		case "EXIT":
			return nil
		default:
			if err := conn.WriteLine(fmt.Sprintf("UNKNOWN command '%s', expected 'GO' or 'EXIT'", cmd)); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateLogin bounds the login and restricts it to printable ASCII, which
// also rules out whitespace that would break the token protocol.
func validateLogin(login string) error {
	if login == "" {
		return errors.New("Login must not be empty.")
	}
	if len(login) > game.MaxLoginLen {
		return fmt.Errorf("Login is too long, max %d characters.", game.MaxLoginLen)
	}
	for _, c := range login {
		if c <= ' ' || c > '~' {
			return errors.New("Login must be printable ASCII without spaces.")
		}
	}
	return nil
}
