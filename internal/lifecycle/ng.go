package lifecycle

import (
	"time"

	"github.com/sonicrain/matchd/internal/domain"
)

// Normal-game timing constants.
const (
	NGChooseHeroTime  = 90 * time.Second
	ReadyToStartTime  = 10 * time.Second
)

// NewNGController builds a Normal-game controller: Loading → Pick (all
// seats at once) → ReadyToStart → Gaming → Finished. No ban phase.
func NewNGController(gameID domain.GameID, mode domain.Mode, seats []domain.UserID, host Host) *Controller {
	all := seatRange(len(seats))
	phases := []PhaseSpec{
		{Kind: PhaseLoading},
		{Kind: PhasePick, Seats: all, Duration: NGChooseHeroTime},
		{Kind: PhaseReadyToStart, Duration: ReadyToStartTime},
		{Kind: PhaseGaming},
		{Kind: PhaseFinished},
	}
	return newController(gameID, mode, seats, phases, host, nil)
}

func seatRange(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
