// Package server implements the line/token-oriented TCP protocol: HELLO
// handshake, WATCH streaming and the PLAY command loop.
package server

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Conn wraps a TCP stream in token framing: incoming bytes are read line by
// line and split on ASCII whitespace, outgoing messages are newline
// terminated and flushed immediately. Used on both ends of the protocol; the
// bot client reuses it.
type Conn struct {
	ID     string
	tcp    net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	tokens []string
}

// NewConn wraps an established connection and assigns it a session ID for
// logging.
func NewConn(tcp net.Conn) *Conn {
	return &Conn{
		ID:  uuid.New().String(),
		tcp: tcp,
		r:   bufio.NewReader(tcp),
		w:   bufio.NewWriter(tcp),
	}
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.tcp.RemoteAddr().String()
}

// Close closes the underlying stream; any blocked read or write fails.
func (c *Conn) Close() error {
	return c.tcp.Close()
}

// ReadToken returns the next whitespace-delimited token, reading further
// lines as needed. Blank lines are skipped.
func (c *Conn) ReadToken() (string, error) {
	for len(c.tokens) == 0 {
		line, err := c.r.ReadString('\n')
		c.tokens = strings.Fields(line)
		if err != nil && len(c.tokens) == 0 {
			return "", err
		}
	}
	tok := c.tokens[0]
	c.tokens = c.tokens[1:]
	return tok, nil
}

// ReadInt32 reads one token and parses it as a signed 32-bit integer.
func (c *Conn) ReadInt32() (int32, error) {
	tok, err := c.ReadToken()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q: %w", tok, err)
	}
	return int32(v), nil
}

// Expect reads one token and fails unless it matches. Client-side helper for
// the HELLO handshake.
func (c *Conn) Expect(want string) error {
	tok, err := c.ReadToken()
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("expected %q, got %q", want, tok)
	}
	return nil
}

// WriteLine sends s followed by a newline (unless s already ends with one)
// and flushes.
func (c *Conn) WriteLine(s string) error {
	if _, err := c.w.WriteString(s); err != nil {
		return err
	}
	if !strings.HasSuffix(s, "\n") {
		if err := c.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return c.w.Flush()
}
