package game

import (
	"math"
	"math/rand"
)

// NextTurn advances the simulation by one turn: movement physics, boundary
// reflection, item collection, then either final results (turn reached
// MaxTurns) or field resize and item respawn. Returns non-nil Results exactly
// once, on the finishing turn; the engine must not advance a finished game.
func (s *State) NextTurn(rng *rand.Rand) *Results {
	for i := range s.Players {
		p := &s.Players[i]
		acc := p.Target.Sub(p.Pos).Scale(MaxAcc)
		p.Speed = p.Speed.Add(acc)
		if p.Speed.Len() > MaxSpeed {
			p.Speed = p.Speed.Scale(MaxSpeed)
		}
		p.Pos = p.Pos.Add(p.Speed)
		reflect(&p.Pos.X, &p.Speed.X, p.Radius, s.Width-p.Radius)
		reflect(&p.Pos.Y, &p.Speed.Y, p.Radius, s.Height-p.Radius)
	}

	// Visit players in a random order so exact ties on an item don't always
	// favor the earliest-joined player. Items are scanned in reverse index
	// order to keep removal index-stable; a removed item is gone for the rest
	// of the order.
	for _, id := range rng.Perm(len(s.Players)) {
		for i := len(s.Items) - 1; i >= 0; i-- {
			if s.Items[i].intersects(s.Players[id]) {
				s.Players[id].Score++
				s.Items = append(s.Items[:i], s.Items[i+1:]...)
			}
		}
	}

	s.Turn++
	if s.Turn == s.MaxTurns {
		return s.results()
	}
	s.resizeField()
	s.addMoreItems(rng)
	return nil
}

// reflect bounces a position off the [min, max) interval on one axis,
// mirroring it about the crossed boundary and negating the velocity
// component. Keeps the player's circle fully inside the field.
func reflect(pos, speed *int32, min, max int32) {
	if *pos < min {
		*pos = 2*min - *pos
		*speed = -*speed
	} else if *pos >= max {
		*pos = 2*max - *pos
		*speed = -*speed
	}
}

// scalingCoeff is the ratio of the current player count to the starting
// threshold, floored at 1. Recomputed every turn from the player count so the
// field and item targets can never drift.
func (s *State) scalingCoeff() float64 {
	coeff := float64(len(s.Players)) / StartMaxPlayers
	if coeff < 1 {
		coeff = 1
	}
	return coeff
}

// resizeField grows the field area linearly with the player count once it
// exceeds the starting threshold.
func (s *State) resizeField() {
	side := math.Sqrt(s.scalingCoeff())
	s.Width = int32(math.Round(StartWidth * side))
	s.Height = int32(math.Round(StartHeight * side))
}

// targetItemCount is how many items the field should hold this turn.
func (s *State) targetItemCount() int {
	return int(math.Round(MaxItems * s.scalingCoeff()))
}

// addMoreItems spawns random items until the target count is reached. A
// candidate overlapping any existing item is rejected and redrawn.
func (s *State) addMoreItems(rng *rand.Rand) {
	for len(s.Items) < s.targetItemCount() {
		r := MinItemR + rng.Int31n(MaxItemR-MinItemR)
		candidate := Item{Pos: s.randPosition(rng, r), Radius: r}
		ok := true
		for _, existing := range s.Items {
			if existing.overlaps(candidate) {
				ok = false
				break
			}
		}
		if ok {
			s.Items = append(s.Items, candidate)
		}
	}
}
