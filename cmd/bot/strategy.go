package main

import "itemrush/internal/game"

// bestTarget picks the item nearest to the bot's own player, which the server
// always places first in the snapshot. With no items on the field the bot
// holds its position.
func bestTarget(st game.State) game.Point {
	me := st.Players[0]
	goTo := me.Pos
	for _, it := range st.Items {
		if goTo == me.Pos || it.Pos.Dist2(me.Pos) < goTo.Dist2(me.Pos) {
			goTo = it.Pos
		}
	}
	return goTo
}
