package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"itemrush/internal/game"
)

// UserResult is one leaderboard row: a user's best score and the game it was
// achieved in.
type UserResult struct {
	User   string
	GameID string
	Score  int64
}

// TopResults is the persisted best-score-per-user leaderboard, one line per
// user: "<user> <game_id> <score>". The whole table is rewritten after every
// finished game; games end on the order of minutes, so the rewrite is cheap.
type TopResults struct {
	mu       sync.Mutex
	results  []UserResult
	filename string
}

// OpenTopResults loads (or creates) the leaderboard file.
func OpenTopResults(filename string) (*TopResults, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}
	f, err := os.OpenFile(filename, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	var results []UserResult
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed results line %q", line)
		}
		score, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse score in line %q: %w", line, err)
		}
		results = append(results, UserResult{User: parts[0], GameID: parts[1], Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	return &TopResults{results: results, filename: filename}, nil
}

// Add merges a finished game into the table: every player's final score is
// considered, each user keeps only their single best row, and the table is
// rewritten sorted by descending score.
func (t *TopResults) Add(res game.Results) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range res.Players {
		t.results = append(t.results, UserResult{
			User:   p.Name,
			GameID: res.GameID,
			Score:  p.Score,
		})
	}
	sort.Slice(t.results, func(i, j int) bool {
		a, b := t.results[i], t.results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.GameID != b.GameID {
			return a.GameID > b.GameID
		}
		return a.User > b.User
	})
	seen := make(map[string]bool, len(t.results))
	kept := t.results[:0]
	for _, r := range t.results {
		if seen[r.User] {
			continue
		}
		seen[r.User] = true
		kept = append(kept, r)
	}
	t.results = kept
	return t.flush()
}

// Table returns a copy of the current leaderboard, best score first.
func (t *TopResults) Table() []UserResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]UserResult(nil), t.results...)
}

// flush rewrites the whole file. Caller must hold t.mu.
func (t *TopResults) flush() error {
	var b strings.Builder
	for _, r := range t.results {
		fmt.Fprintf(&b, "%s %s %d\n", r.User, r.GameID, r.Score)
	}
	if err := os.WriteFile(t.filename, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("rewrite results file: %w", err)
	}
	return nil
}
