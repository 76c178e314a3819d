package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/sonicrain/matchd/internal/domain"
	"github.com/sonicrain/matchd/internal/lifecycle"
	"github.com/sonicrain/matchd/internal/metrics"
)

// prestartSweep runs once per fast tick against every entry in
// preStartGames, checking whether each is ready, cancelled, or still
// waiting on its roster.
func (e *Engine) prestartSweep() {
	for _, gid := range append([]domain.GameID(nil), e.preStartGames...) {
		game := e.arena.GameByID(gid)
		if game == nil {
			delete(e.preStartSet, gid)
			continue
		}
		switch e.arena.GameCheckPrestart(game) {
		case domain.PrestartReady:
			e.promoteToGaming(game)
		case domain.PrestartCancel:
			e.cancelPrestart(game)
		case domain.PrestartWait:
			// left in place; slow tick resends prestart to stragglers.
		}
	}
	metrics.GamesInPrestart.Set(float64(len(e.preStartGames)))
	metrics.GamesActive.Set(float64(len(e.gamingGames)))
}

func (e *Engine) nextPort() uint16 {
	port := e.nextGamePort
	if e.nextGamePort >= GamePortHigh {
		e.nextGamePort = GamePortLow
	} else {
		e.nextGamePort++
	}
	return port
}

func (e *Engine) promoteToGaming(game *domain.FightGame) {
	game.GamePort = e.nextPort()
	e.arena.GameReady(game)
	e.arena.UpdateNames(game)

	delete(e.preStartSet, game.ID)
	for i, id := range e.preStartGames {
		if id == game.ID {
			e.preStartGames = append(e.preStartGames[:i], e.preStartGames[i+1:]...)
			break
		}
	}

	seats := append([]domain.UserID(nil), game.UserNames...)
	var ctrl *lifecycle.Controller
	switch game.Mode {
	case domain.ModeNG1v1, domain.ModeNG5v5:
		ctrl = lifecycle.NewNGController(game.ID, game.Mode, seats, e)
	case domain.ModeRK1v1, domain.ModeRK5v5:
		ctrl = lifecycle.NewRKController(game.ID, game.Mode, seats, e)
	case domain.ModeAT:
		ctrl = lifecycle.NewATController(game.ID, seats, e)
	case domain.ModeARAM:
		ctrl = lifecycle.NewARAMController(game.ID, seats, e, e.heroPool)
	default:
		ctrl = lifecycle.NewNGController(game.ID, game.Mode, seats, e)
	}
	e.gamingGames[game.ID] = ctrl

	if e.launcher != nil {
		if err := e.launcher.Start(game.ID, game.GamePort); err != nil {
			e.log.Warn("launcher failed, match will time out client-side",
				zap.Uint64("game_id", uint64(game.ID)), zap.Error(err))
		}
	}
	e.publish(gameTopic(game.ID, "game_singal"), map[string]any{"game_id": game.ID, "game_port": game.GamePort})
}

func (e *Engine) cancelPrestart(game *domain.FightGame) {
	metrics.PrestartCancelled.WithLabelValues(string(game.Mode)).Inc()
	e.arena.UpdateNames(game)
	e.arena.GameClearQueue(game)

	delete(e.preStartSet, game.ID)
	for i, id := range e.preStartGames {
		if id == game.ID {
			e.preStartGames = append(e.preStartGames[:i], e.preStartGames[i+1:]...)
			break
		}
	}

	for _, gid := range game.Teams {
		g := e.arena.Group(gid)
		if g == nil {
			continue
		}
		for _, rid := range g.Rooms {
			r := e.arena.Room(rid)
			if r == nil {
				continue
			}
			r.Ready = domain.ReadyIdle
			e.publish(roomTopic(e.arena.User(r.Master).ExtID, "start_get"), map[string]string{"status": "stop queue"})
		}
		e.arena.DeleteGroup(gid)
	}
	e.arena.DeleteGame(game.ID)
}

// resendPrestartReminders is the slow-tick reminder: re-broadcast prestart
// to every room still in PreStartGames whose members haven't all
// acknowledged with PreStartGet.
func (e *Engine) resendPrestartReminders() {
	for _, gid := range e.preStartGames {
		game := e.arena.GameByID(gid)
		if game == nil {
			continue
		}
		for _, teamGid := range game.Teams {
			g := e.arena.Group(teamGid)
			if g == nil {
				continue
			}
			for _, rid := range g.Rooms {
				r := e.arena.Room(rid)
				if r == nil || e.arena.CheckPrestartGet(r) {
					continue
				}
				e.publish(roomTopic(e.arena.User(r.Master).ExtID, "prestart"), map[string]any{"game_id": game.ID})
			}
		}
	}
}

// tickControllers steps every active match-lifecycle controller once. A
// controller reaching Finished just means its pre-game pipeline (loading
// through ready-to-start) is done; the match itself is torn down later by
// an explicit GameOver/GameClose command, not by the controller.
func (e *Engine) tickControllers(elapsed time.Duration) {
	for _, ctrl := range e.gamingGames {
		ctrl.Tick(elapsed)
	}
}
