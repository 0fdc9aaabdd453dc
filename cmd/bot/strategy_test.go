package main

import (
	"testing"

	"itemrush/internal/game"
)

func TestBestTargetPicksNearestItem(t *testing.T) {
	st := game.State{
		Players: []game.Player{{Name: "me", Pos: game.Point{X: 500, Y: 500}}},
		Items: []game.Item{
			{Pos: game.Point{X: 900, Y: 900}, Radius: 30},
			{Pos: game.Point{X: 520, Y: 480}, Radius: 30},
			{Pos: game.Point{X: 100, Y: 100}, Radius: 30},
		},
	}
	if got := bestTarget(st); got != (game.Point{X: 520, Y: 480}) {
		t.Errorf("target = %v, want the nearest item at {520 480}", got)
	}
}

func TestBestTargetHoldsPositionWithoutItems(t *testing.T) {
	st := game.State{
		Players: []game.Player{{Name: "me", Pos: game.Point{X: 321, Y: 123}}},
	}
	if got := bestTarget(st); got != (game.Point{X: 321, Y: 123}) {
		t.Errorf("target = %v, want own position", got)
	}
}

func TestBestTargetIgnoresOtherPlayers(t *testing.T) {
	st := game.State{
		Players: []game.Player{
			{Name: "me", Pos: game.Point{X: 0, Y: 0}},
			{Name: "rival", Pos: game.Point{X: 10, Y: 10}},
		},
		Items: []game.Item{{Pos: game.Point{X: 200, Y: 0}, Radius: 30}},
	}
	if got := bestTarget(st); got != (game.Point{X: 200, Y: 0}) {
		t.Errorf("target = %v, want the only item", got)
	}
}
