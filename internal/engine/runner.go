// Package engine drives the authoritative simulation: one fixed-tick loop
// that owns the canonical game state, game after game, forever.
package engine

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"itemrush/internal/broadcast"
	"itemrush/internal/game"
	"itemrush/internal/store"
)

// Runner owns the canonical game state. It is the only writer: every tick it
// publishes a clone to the feed, sleeps out the turn, drains queued moves and
// advances the simulation. Sessions only ever see snapshots and the move
// channel.
type Runner struct {
	feed     *broadcast.Feed
	moves    <-chan game.Move
	results  *store.TopResults
	gamesDir string
	rng      *rand.Rand
	wait     time.Duration
}

// NewRunner wires the engine loop to its collaborators. gamesDir receives one
// append-only transcript file per game.
func NewRunner(feed *broadcast.Feed, moves <-chan game.Move, results *store.TopResults, gamesDir string) *Runner {
	return &Runner{
		feed:     feed,
		moves:    moves,
		results:  results,
		gamesDir: gamesDir,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		wait:     game.TurnWait,
	}
}

// Run loops indefinitely, one game after another. It returns only on
// unrecoverable persistence failures.
func (r *Runner) Run() error {
	if err := os.MkdirAll(r.gamesDir, 0o755); err != nil {
		return fmt.Errorf("create games dir: %w", err)
	}
	log.Printf("engine running, %v per turn", r.wait)
	for {
		gameID := "game-" + time.Now().Format("2006-01-02_15-04-05")
		if err := r.runGame(gameID); err != nil {
			return err
		}
	}
}

// runGame plays a single game to completion and merges its results into the
// leaderboard.
func (r *Runner) runGame(gameID string) error {
	log.Printf("new game %s", gameID)
	state := game.NewState(gameID, r.rng)

	transcript, err := os.Create(filepath.Join(r.gamesDir, gameID+".txt"))
	if err != nil {
		return fmt.Errorf("create transcript: %w", err)
	}
	defer transcript.Close()

	for {
		log.Printf("turn %d/%d, %d players", state.Turn, state.MaxTurns, len(state.Players))
		if _, err := transcript.WriteString(game.Encode(state)); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		r.feed.Publish(state.Clone())

		time.Sleep(r.wait)
		r.drainMoves(&state)

		res := state.NextTurn(r.rng)
		if res == nil {
			continue
		}
		log.Printf("game %s finished:", gameID)
		for _, p := range res.Players {
			log.Printf("  %s: %d", p.Name, p.Score)
		}
		if r.results != nil {
			if err := r.results.Add(*res); err != nil {
				return fmt.Errorf("record results: %w", err)
			}
		}
		return nil
	}
}

// drainMoves applies every move queued before this point. Moves arriving
// during the drain wait for the next tick.
func (r *Runner) drainMoves(state *game.State) {
	for {
		select {
		case m := <-r.moves:
			state.ApplyMove(m, r.rng)
		default:
			return
		}
	}
}
