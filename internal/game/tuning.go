package game

import "time"

// Game tuning constants
const (
	// Physics — integer positions, float intermediate vector math
	MaxAcc   = 20.0  // acceleration magnitude applied toward the target each turn
	MaxSpeed = 100.0 // speed magnitude cap, px per turn

	// Field — grows with player count, see scalingCoeff
	StartWidth      = 2000
	StartHeight     = 1500
	StartMaxPlayers = 5 // player count at which the field starts to grow

	// Items
	MaxItems = 10  // base item count, scaled by player count
	MinItemR = 20  // inclusive lower bound for item radius
	MaxItemR = 100 // exclusive upper bound for item radius

	PlayerRadius = 20

	// Turns
	MaxTurns = 600 // turns per game (~5 min at the default turn wait)
	TurnWait = 500 * time.Millisecond

	// Session limits
	MaxLoginLen    = 20
	MaxPasswordLen = 100

	// Transports
	DefaultTCPPort = 7877
	DefaultWSPort  = 7878

	// MoveQueueCap bounds the move intake channel. A full queue blocks the
	// sending session instead of dropping the move.
	MoveQueueCap = 1024
)
