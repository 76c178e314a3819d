package lifecycle

import (
	"time"

	"github.com/sonicrain/matchd/internal/domain"
)

// Arranged-Team seat orders, taken verbatim from the glossary:
//   bans:  0, 5, 1, 6, 2, 7   then   8, 3, 9, 4
//   picks: 0, 5, 6, 1, 2, 7   then   8, 3, 4, 9
var (
	atFirstBans   = []int{0, 5, 1, 6, 2, 7}
	atFirstPicks  = []int{0, 5, 6, 1, 2, 7}
	atSecondBans  = []int{8, 3, 9, 4}
	atSecondPicks = []int{8, 3, 4, 9}
)

// NewATController builds an Arranged-Team controller: six interleaved
// single-seat bans, six single-seat picks, four more bans, four more
// picks, then ReadyToStart → Gaming → Finished. Each ban/pick step locks a
// single seat, matching the literal seat sequences above.
func NewATController(gameID domain.GameID, seats []domain.UserID, host Host) *Controller {
	phases := []PhaseSpec{{Kind: PhaseLoading}}
	phases = append(phases, singleSeatPhases(PhaseBan, atFirstBans, BanHeroTime)...)
	phases = append(phases, singleSeatPhases(PhasePick, atFirstPicks, ChooseHeroTime)...)
	phases = append(phases, singleSeatPhases(PhaseBan, atSecondBans, BanHeroTime)...)
	phases = append(phases, singleSeatPhases(PhasePick, atSecondPicks, ChooseHeroTime)...)
	phases = append(phases,
		PhaseSpec{Kind: PhaseReadyToStart, Duration: ReadyToStartTime},
		PhaseSpec{Kind: PhaseGaming},
		PhaseSpec{Kind: PhaseFinished},
	)
	return newController(gameID, domain.ModeAT, seats, phases, host, nil)
}

// singleSeatPhases expands a seat sequence into one PhaseSpec per seat,
// each locking exactly that seat for the given duration.
func singleSeatPhases(kind PhaseKind, seatOrder []int, duration time.Duration) []PhaseSpec {
	phases := make([]PhaseSpec, len(seatOrder))
	for i, seat := range seatOrder {
		phases[i] = PhaseSpec{Kind: kind, Seats: []int{seat}, Duration: duration}
	}
	return phases
}
