package engine

import "time"

// Core matchmaking tunables.
const (
	MatchSize     = 2
	ScoreInterval = 2000

	FastTick  = 200 * time.Millisecond
	SlowTick  = 5000 * time.Millisecond

	GamePortLow  uint16 = 7777
	GamePortHigh uint16 = 65500

	CommandQueueDepth = 1024
	OutboundQueueDepth = 1024
)
