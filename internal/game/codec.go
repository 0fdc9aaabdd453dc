package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Wire format for one state snapshot, whitespace-delimited tokens:
//
//	TURN <turn> <max_turns> <width> <height> <game_id>
//	<num_players>
//	<name> <score> <x> <y> <radius> <vx> <vy> <target_x> <target_y>   (per player)
//	<num_items>
//	<x> <y> <radius>                                                  (per item)
//	END_STATE
//
// All numeric fields are integers, so Decode(Encode(s)) == s exactly.

// Encode serializes the full state, newline-separated for readability.
func Encode(s State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TURN %d %d %d %d %s\n", s.Turn, s.MaxTurns, s.Width, s.Height, s.GameID)
	fmt.Fprintf(&b, "%d\n", len(s.Players))
	for _, p := range s.Players {
		fmt.Fprintf(&b, "%s %d %d %d %d %d %d %d %d\n",
			p.Name, p.Score, p.Pos.X, p.Pos.Y, p.Radius,
			p.Speed.X, p.Speed.Y, p.Target.X, p.Target.Y)
	}
	fmt.Fprintf(&b, "%d\n", len(s.Items))
	for _, it := range s.Items {
		fmt.Fprintf(&b, "%d %d %d\n", it.Pos.X, it.Pos.Y, it.Radius)
	}
	b.WriteString("END_STATE\n")
	return b.String()
}

// Decode parses an encoded snapshot. Any structural mismatch (wrong keyword,
// missing tokens, a non-numeric field, a bad sentinel) fails with an error
// naming the offending field; partial state is never returned.
func Decode(encoded string) (State, error) {
	tr := tokenReader{tokens: strings.Fields(encoded)}

	keyword, err := tr.next("TURN")
	if err != nil {
		return State{}, err
	}
	if keyword != "TURN" {
		return State{}, fmt.Errorf("expected TURN, got %q", keyword)
	}

	var s State
	if s.Turn, err = tr.nextCount("turn"); err != nil {
		return State{}, err
	}
	if s.MaxTurns, err = tr.nextCount("max_turns"); err != nil {
		return State{}, err
	}
	if s.Width, err = tr.nextInt32("width"); err != nil {
		return State{}, err
	}
	if s.Height, err = tr.nextInt32("height"); err != nil {
		return State{}, err
	}
	if s.GameID, err = tr.next("game_id"); err != nil {
		return State{}, err
	}

	numPlayers, err := tr.nextCount("num_players")
	if err != nil {
		return State{}, err
	}
	for i := 0; i < numPlayers; i++ {
		var p Player
		if p.Name, err = tr.next("player name"); err != nil {
			return State{}, err
		}
		if p.Score, err = tr.nextInt64("player score"); err != nil {
			return State{}, err
		}
		if p.Pos.X, err = tr.nextInt32("player x"); err != nil {
			return State{}, err
		}
		if p.Pos.Y, err = tr.nextInt32("player y"); err != nil {
			return State{}, err
		}
		if p.Radius, err = tr.nextInt32("player radius"); err != nil {
			return State{}, err
		}
		if p.Speed.X, err = tr.nextInt32("player vx"); err != nil {
			return State{}, err
		}
		if p.Speed.Y, err = tr.nextInt32("player vy"); err != nil {
			return State{}, err
		}
		if p.Target.X, err = tr.nextInt32("player target_x"); err != nil {
			return State{}, err
		}
		if p.Target.Y, err = tr.nextInt32("player target_y"); err != nil {
			return State{}, err
		}
		s.Players = append(s.Players, p)
	}

	numItems, err := tr.nextCount("num_items")
	if err != nil {
		return State{}, err
	}
	for i := 0; i < numItems; i++ {
		var it Item
		if it.Pos.X, err = tr.nextInt32("item x"); err != nil {
			return State{}, err
		}
		if it.Pos.Y, err = tr.nextInt32("item y"); err != nil {
			return State{}, err
		}
		if it.Radius, err = tr.nextInt32("item radius"); err != nil {
			return State{}, err
		}
		s.Items = append(s.Items, it)
	}

	sentinel, err := tr.next("END_STATE")
	if err != nil {
		return State{}, err
	}
	if sentinel != "END_STATE" {
		return State{}, fmt.Errorf("expected END_STATE, got %q", sentinel)
	}
	return s, nil
}

// tokenReader yields whitespace-separated tokens positionally, with errors
// that name the field being read.
type tokenReader struct {
	tokens []string
}

func (tr *tokenReader) next(field string) (string, error) {
	if len(tr.tokens) == 0 {
		return "", fmt.Errorf("state truncated: missing %s", field)
	}
	tok := tr.tokens[0]
	tr.tokens = tr.tokens[1:]
	return tok, nil
}

func (tr *tokenReader) nextInt32(field string) (int32, error) {
	tok, err := tr.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse %s from %q: %w", field, tok, err)
	}
	return int32(v), nil
}

func (tr *tokenReader) nextInt64(field string) (int64, error) {
	tok, err := tr.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s from %q: %w", field, tok, err)
	}
	return v, nil
}

func (tr *tokenReader) nextCount(field string) (int, error) {
	tok, err := tr.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("parse %s from %q: %w", field, tok, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative %s: %d", field, v)
	}
	return v, nil
}
