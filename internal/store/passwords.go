// Package store persists credentials and the best-score leaderboard as plain
// whitespace-delimited text files, one row per line.
package store

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"itemrush/internal/game"
)

// Passwords is the credential table, one line per user: "<login> <ip>
// <password>". The first PLAY for a login registers its password; later
// sessions must present the exact same one. Loading applies last-write-wins
// per login.
type Passwords struct {
	mu    sync.Mutex
	known map[string]string
	file  *os.File
}

// OpenPasswords loads (or creates) the credential file and keeps it open for
// appending new registrations.
func OpenPasswords(filename string) (*Passwords, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("create password dir: %w", err)
	}
	f, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open password file: %w", err)
	}
	known := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 3 {
			f.Close()
			return nil, fmt.Errorf("malformed password line %q", line)
		}
		known[parts[0]] = parts[2]
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("read password file: %w", err)
	}
	return &Passwords{known: known, file: f}, nil
}

// Check verifies the password for a known login, or registers it for a new
// one. The returned error text is sent verbatim to the client. The lock is
// held only for the check itself, never across peer I/O.
func (p *Passwords) Check(login, password, ip string) error {
	if password == "GO" {
		return errors.New("Please don't use 'GO' as your password!")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if expected, ok := p.known[login]; ok {
		if expected == password {
			return nil
		}
		return errors.New("Wrong password. Use the same password as before.")
	}
	if len(password) > game.MaxPasswordLen {
		return fmt.Errorf("Password is too long, max %d characters.", game.MaxPasswordLen)
	}
	if _, err := fmt.Fprintf(p.file, "%s %s %s\n", login, ip, password); err != nil {
		return fmt.Errorf("persist password: %w", err)
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("flush password file: %w", err)
	}
	p.known[login] = password
	log.Printf("registered new login %s, %d known users", login, len(p.known))
	return nil
}

// Close releases the underlying file.
func (p *Passwords) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file.Close()
}
