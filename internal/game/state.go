package game

import (
	"math"
	"math/rand"
	"sort"
)

// Player is one participant in a game. Players are created the first time a
// move arrives for an unseen name and stay in the game until it ends, even if
// their connection drops.
type Player struct {
	Name   string
	Pos    Point
	Speed  Point
	Target Point
	Score  int64
	Radius int32
}

// Item is a collectible circle. It disappears the moment a player touches it.
type Item struct {
	Pos    Point
	Radius int32
}

// intersects reports whether the item circle touches the player circle.
func (it Item) intersects(p Player) bool {
	maxOK := int64(it.Radius + p.Radius)
	return it.Pos.Dist2(p.Pos) <= maxOK*maxOK
}

// overlaps reports whether two item circles touch. Used to keep freshly
// spawned items apart.
func (it Item) overlaps(other Item) bool {
	maxOK := int64(it.Radius + other.Radius)
	return it.Pos.Dist2(other.Pos) <= maxOK*maxOK
}

// State is the full game state for one turn. The engine loop is the single
// writer; everybody else works on clones. Snapshots obtained from the
// broadcast feed share backing arrays, so mutate a Clone only.
type State struct {
	Width    int32
	Height   int32
	Turn     int
	MaxTurns int
	GameID   string
	Players  []Player
	Items    []Item
}

// NewState creates a fresh game: turn 0, starting field dimensions, no
// players, items pre-populated to the target count.
func NewState(gameID string, rng *rand.Rand) State {
	s := State{
		Width:    StartWidth,
		Height:   StartHeight,
		MaxTurns: MaxTurns,
		GameID:   gameID,
	}
	s.addMoreItems(rng)
	return s
}

// Clone returns a deep copy safe to mutate independently.
func (s State) Clone() State {
	c := s
	c.Players = append([]Player(nil), s.Players...)
	c.Items = append([]Item(nil), s.Items...)
	return c
}

// Move is a steering command: set the named player's desired destination.
type Move struct {
	Name   string
	Target Point
}

// Results is produced exactly once per game, when the turn counter reaches
// MaxTurns. Players are sorted by descending score.
type Results struct {
	GameID  string
	Players []Player
}

func (s *State) findPlayer(name string) int {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return i
		}
	}
	return -1
}

// MakePlayerFirst swaps the named player to index 0 so that the snapshot sent
// to that player always leads with their own row. Returns false if no such
// player exists yet.
func (s *State) MakePlayerFirst(name string) bool {
	idx := s.findPlayer(name)
	if idx < 0 {
		return false
	}
	s.Players[0], s.Players[idx] = s.Players[idx], s.Players[0]
	return true
}

// clampCoord guards against arithmetic overflow later in the physics: a
// coordinate beyond a tenth of the int32 range is divided by 10.
func clampCoord(v int32) int32 {
	if v > math.MaxInt32/10 || v < -math.MaxInt32/10 {
		return v / 10
	}
	return v
}

// ApplyMove updates the named player's target. An unseen name creates a new
// player at a random legal position with zero velocity and a target equal to
// that position, so the first (neutral) move leaves it standing still.
func (s *State) ApplyMove(m Move, rng *rand.Rand) {
	if idx := s.findPlayer(m.Name); idx >= 0 {
		s.Players[idx].Target = Point{
			X: clampCoord(m.Target.X),
			Y: clampCoord(m.Target.Y),
		}
		return
	}
	pos := s.randPosition(rng, PlayerRadius)
	s.Players = append(s.Players, Player{
		Name:   m.Name,
		Pos:    pos,
		Target: pos,
		Radius: PlayerRadius,
	})
}

// randPosition picks a uniform random point such that a circle of the given
// radius fits fully inside the field.
func (s *State) randPosition(rng *rand.Rand, radius int32) Point {
	return Point{
		X: radius + rng.Int31n(s.Width-2*radius),
		Y: radius + rng.Int31n(s.Height-2*radius),
	}
}

// results ranks the players by descending score, keeping the original order
// for equal scores.
func (s *State) results() *Results {
	players := append([]Player(nil), s.Players...)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return &Results{GameID: s.GameID, Players: players}
}
