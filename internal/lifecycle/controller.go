// Package lifecycle implements the per-mode pre-game pipeline: loading,
// ban, pick, ready-to-start, gaming and finished, stepped once per engine
// fast tick while a game is active. Each mode's pipeline is a sequence of
// typed PhaseSpecs rather than a single integer status with a switch table
// — illegal transitions (skipping a phase, re-entering Ban after Pick) are
// simply not representable by the phase index.
package lifecycle

import (
	"math/rand"
	"time"

	"github.com/sonicrain/matchd/internal/domain"
)

// PhaseKind is a controller's coarse stage.
type PhaseKind int

const (
	PhaseLoading PhaseKind = iota
	PhaseBan
	PhasePick
	PhaseReadyToStart
	PhaseGaming
	PhaseFinished
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseLoading:
		return "loading"
	case PhaseBan:
		return "ban"
	case PhasePick:
		return "pick"
	case PhaseReadyToStart:
		return "ready_to_start"
	case PhaseGaming:
		return "gaming"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// PhaseSpec describes one substage: which seats may act, how long they
// have, and whether the controller assigns heroes itself (ARAM) rather
// than waiting on user choice.
type PhaseSpec struct {
	Kind       PhaseKind
	Seats      []int
	Duration   time.Duration
	AutoAssign bool
}

// Buffer is the negative-time threshold past which a phase force-advances
// by jumping laggards to a default.
const Buffer = -5 * time.Second

// HeroPick is one seat's settled ban/pick, reported to the host for the
// end-of-ReadyToStart persistence snapshot.
type HeroPick struct {
	Seat      int
	UserID    domain.UserID
	Hero      string
	BanHero   string
}

// Host is the subset of engine behaviour a controller needs: looking up
// users, publishing game-scoped messages, resolving the configured default
// hero, and persisting the hero snapshot when a match leaves ReadyToStart.
// Defined here (not imported from the engine package) to keep lifecycle
// free of a dependency on the engine/bus/persistence stack.
type Host interface {
	User(id domain.UserID) *domain.User
	PublishGame(gameID domain.GameID, suffix string, payload []byte)
	DefaultHero() string
	PersistHeroSnapshot(gameID domain.GameID, picks []HeroPick)
}

// Controller steps one match through its mode's phase sequence.
type Controller struct {
	GameID domain.GameID
	Mode   domain.Mode
	Seats  []domain.UserID // flattened: team0 seats, then team1 seats

	phases    []PhaseSpec
	phaseIdx  int
	entered   bool
	countdown time.Duration

	bannedHeroes [2][]string
	rng          *rand.Rand
	heroPool     []string

	host Host
}

// Phase returns the controller's current substage.
func (c *Controller) Phase() PhaseKind {
	return c.phases[c.phaseIdx].Kind
}

// IsDone reports whether the match has reached Finished.
func (c *Controller) IsDone() bool {
	return c.Phase() == PhaseFinished
}

// Tick advances the controller by one fast-tick worth of time. A single
// call may cascade through several phases when each completes instantly
// (a zero-duration Loading, an empty-seat Ban, an auto-assigned Pick) —
// elapsed is only charged against the first phase still waiting on a
// countdown; later phases in the same cascade start fresh.
func (c *Controller) Tick(elapsed time.Duration) {
	for !c.IsDone() {
		spec := c.phases[c.phaseIdx]
		if !c.entered {
			c.enterPhase(spec)
		}

		switch spec.Kind {
		case PhaseGaming, PhaseFinished:
			return

		case PhaseBan, PhasePick:
			if c.allActed(spec) {
				c.leavePhase(spec)
				c.advance()
				elapsed = 0
				continue
			}
			c.countdown -= elapsed
			elapsed = 0
			if c.countdown <= Buffer {
				c.jumpLaggards(spec)
				c.leavePhase(spec)
				c.advance()
				continue
			}
			return

		default: // Loading, ReadyToStart: plain countdown, no per-seat action
			c.countdown -= elapsed
			elapsed = 0
			if c.countdown <= 0 {
				c.leavePhase(spec)
				c.advance()
				continue
			}
			return
		}
	}
}

func (c *Controller) enterPhase(spec PhaseSpec) {
	c.entered = true
	c.countdown = spec.Duration
	c.publishEntry(spec)
	if spec.AutoAssign {
		c.autoAssignHeroes(spec)
	}
}

// publishEntry emits the phase-entry beacon. Loading and Finished are
// silent — nothing on the bus cares that they were entered.
func (c *Controller) publishEntry(spec PhaseSpec) {
	switch spec.Kind {
	case PhaseBan, PhasePick, PhaseReadyToStart, PhaseGaming:
		c.host.PublishGame(c.GameID, "game_status", c.statusPayload(spec))
	}
}

func (c *Controller) statusPayload(spec PhaseSpec) []byte {
	return []byte(`{"mode":"` + string(c.Mode) + `","phase":"` + spec.Kind.String() + `"}`)
}

func (c *Controller) sideOf(seat int) int {
	if seat < len(c.Seats)/2 {
		return 0
	}
	return 1
}

func (c *Controller) allActed(spec PhaseSpec) bool {
	for _, seat := range spec.Seats {
		u := c.host.User(c.Seats[seat])
		if u == nil {
			continue
		}
		if spec.Kind == PhaseBan && u.BanHero == "" {
			return false
		}
		if spec.Kind == PhasePick && u.Hero == "" {
			return false
		}
	}
	return true
}

// jumpLaggards assigns the configured default hero/ban to every seat in
// spec.Seats that hasn't acted.
func (c *Controller) jumpLaggards(spec PhaseSpec) {
	def := c.host.DefaultHero()
	for _, seat := range spec.Seats {
		u := c.host.User(c.Seats[seat])
		if u == nil {
			continue
		}
		switch spec.Kind {
		case PhaseBan:
			if u.BanHero == "" {
				u.BanHero = def
				c.bannedHeroes[c.sideOf(seat)] = append(c.bannedHeroes[c.sideOf(seat)], def)
			}
		case PhasePick:
			if u.Hero == "" {
				u.Hero = def
			}
		}
	}
}

// autoAssignHeroes rolls a hero for every seat in an ARAM pick phase,
// regardless of whether the user has one set.
func (c *Controller) autoAssignHeroes(spec PhaseSpec) {
	if spec.Kind != PhasePick || len(c.heroPool) == 0 {
		return
	}
	for _, seat := range spec.Seats {
		u := c.host.User(c.Seats[seat])
		if u == nil {
			continue
		}
		u.Hero = c.heroPool[c.rng.Intn(len(c.heroPool))]
	}
}

func (c *Controller) leavePhase(spec PhaseSpec) {
	if spec.Kind == PhaseBan {
		for _, seat := range spec.Seats {
			u := c.host.User(c.Seats[seat])
			if u != nil && u.BanHero != "" {
				c.bannedHeroes[c.sideOf(seat)] = append(c.bannedHeroes[c.sideOf(seat)], u.BanHero)
			}
		}
	}
	if spec.Kind == PhaseReadyToStart {
		c.host.PersistHeroSnapshot(c.GameID, c.snapshot())
	}
}

func (c *Controller) snapshot() []HeroPick {
	picks := make([]HeroPick, 0, len(c.Seats))
	for seat, uid := range c.Seats {
		u := c.host.User(uid)
		if u == nil {
			continue
		}
		picks = append(picks, HeroPick{Seat: seat, UserID: uid, Hero: u.Hero, BanHero: u.BanHero})
	}
	return picks
}

func (c *Controller) advance() {
	c.phaseIdx++
	c.entered = false
}

// newController builds the shared scaffolding; mode constructors supply the
// phase table.
func newController(gameID domain.GameID, mode domain.Mode, seats []domain.UserID, phases []PhaseSpec, host Host, heroPool []string) *Controller {
	return &Controller{
		GameID:   gameID,
		Mode:     mode,
		Seats:    seats,
		phases:   phases,
		host:     host,
		heroPool: heroPool,
		rng:      rand.New(rand.NewSource(int64(gameID) + 1)),
	}
}
