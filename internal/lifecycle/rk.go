package lifecycle

import (
	"time"

	"github.com/sonicrain/matchd/internal/domain"
)

// Ranked timing constants.
const (
	BanHeroTime    = 25 * time.Second
	ChooseHeroTime = 30 * time.Second
)

// rkPickOrder is the "1-2-2-2-2-1" competitive draft from the glossary's
// Seat order (Ranked pick): [0] → [5,6] → [1,2] → [7,8] → [3,4] → [9].
var rkPickOrder = [][]int{{0}, {5, 6}, {1, 2}, {7, 8}, {3, 4}, {9}}

// NewRKController builds a Ranked controller: Loading → Ban(all seats) →
// the six-step pick draft → ReadyToStart → Gaming → Finished. 1-v-1 ranked
// collapses to a plain two-seat ban/pick since the draft order is defined
// only for the 5-v-5 roster.
func NewRKController(gameID domain.GameID, mode domain.Mode, seats []domain.UserID, host Host) *Controller {
	all := seatRange(len(seats))
	phases := []PhaseSpec{
		{Kind: PhaseLoading},
		{Kind: PhaseBan, Seats: all, Duration: BanHeroTime},
	}
	if len(seats) == 2 {
		phases = append(phases, PhaseSpec{Kind: PhasePick, Seats: all, Duration: ChooseHeroTime})
	} else {
		for _, step := range rkPickOrder {
			phases = append(phases, PhaseSpec{Kind: PhasePick, Seats: step, Duration: ChooseHeroTime})
		}
	}
	phases = append(phases,
		PhaseSpec{Kind: PhaseReadyToStart, Duration: ReadyToStartTime},
		PhaseSpec{Kind: PhaseGaming},
		PhaseSpec{Kind: PhaseFinished},
	)
	return newController(gameID, mode, seats, phases, host, nil)
}
