package lifecycle

import "github.com/sonicrain/matchd/internal/domain"

// DefaultHeroPool is used when no larger roster is configured; ARAM rolls
// are purely cosmetic placeholders for heroes the dedicated server will
// reconcile against its own catalogue.
var DefaultHeroPool = []string{"warrior", "ranger", "mage", "support", "assassin", "tank"}

// NewARAMController builds an All-Random-All-Mid controller: an instant
// zero-duration ban broadcast (no user action), an instant roll-and-assign
// pick, then ReadyToStart → Gaming → Finished.
func NewARAMController(gameID domain.GameID, seats []domain.UserID, host Host, heroPool []string) *Controller {
	if len(heroPool) == 0 {
		heroPool = DefaultHeroPool
	}
	phases := []PhaseSpec{
		{Kind: PhaseLoading},
		{Kind: PhaseBan},
		{Kind: PhasePick, Seats: seatRange(len(seats)), AutoAssign: true},
		{Kind: PhaseReadyToStart, Duration: ReadyToStartTime},
		{Kind: PhaseGaming},
		{Kind: PhaseFinished},
	}
	return newController(gameID, domain.ModeARAM, seats, phases, host, heroPool)
}
