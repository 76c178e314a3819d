package engine

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sonicrain/matchd/internal/domain"
	"github.com/sonicrain/matchd/internal/lifecycle"
	"github.com/sonicrain/matchd/internal/persistence"
)

const seedRating = 1000

// roomByMaster finds the room whose master has the given external id.
// Linear scan: room counts stay small enough (thousands, not millions) that
// an index isn't worth the bookkeeping — see UserByExtID for the same call.
func (e *Engine) roomByMaster(extID string) *domain.Room {
	for _, r := range e.arena.Rooms() {
		if master := e.arena.User(r.Master); master != nil && master.ExtID == extID {
			return r
		}
	}
	return nil
}

func (e *Engine) handleLogin(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		u = e.arena.CreateUser(cmd.UserExtID, seedRating)
		if e.sink != nil {
			e.sink.Enqueue(persistence.UserRecord{
				ExtID: u.ExtID,
				Name:  u.Name,
				NG1v1: *u.Rating(domain.BucketNG1v1),
				NG5v5: *u.Rating(domain.BucketNG5v5),
				RK1v1: *u.Rating(domain.BucketRK1v1),
				RK5v5: *u.Rating(domain.BucketRK5v5),
				At:    e.clock.Now(),
			})
		}
	}
	u.Online = true
	e.publish(memberTopic(u.ExtID, "login"), loginViewFor(u))
}

func (e *Engine) handleLogout(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		e.fail(cmd.UserExtID, "logout", status.Error(codes.NotFound, "user not found"))
		return
	}
	if u.GameID != 0 {
		e.fail(cmd.UserExtID, "logout", status.Error(codes.FailedPrecondition, "user is mid-match"))
		return
	}
	u.Online = false
	if u.RID != 0 {
		if r := e.arena.Room(u.RID); r != nil {
			e.dequeueRoom(r.ID)
			e.detachFromGroup(r.ID)
			empty := e.arena.RemoveUserFromRoom(r, u.ID)
			if empty {
				e.arena.DeleteRoom(r.ID)
			} else {
				e.broadcastRoomUpdate(r)
			}
		}
	}
	e.ok(cmd.UserExtID, "logout")
}

func (e *Engine) handleCreate(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		e.fail(cmd.UserExtID, "create", status.Error(codes.NotFound, "user not found"))
		return
	}
	if u.RID != 0 {
		e.fail(cmd.UserExtID, "create", status.Error(codes.FailedPrecondition, "already in a room"))
		return
	}
	r := e.arena.CreateRoom(cmd.Mode, u)
	e.broadcastRoomUpdate(r)
}

func (e *Engine) handleClose(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil || u.RID == 0 {
		e.fail(cmd.UserExtID, "close", status.Error(codes.FailedPrecondition, "no room"))
		return
	}
	r := e.arena.Room(u.RID)
	if r == nil || r.Master != u.ID {
		e.fail(cmd.UserExtID, "close", status.Error(codes.PermissionDenied, "not room master"))
		return
	}
	e.dequeueRoom(r.ID)
	e.detachFromGroup(r.ID)
	e.arena.LeaveRoom(r)
	e.arena.DeleteRoom(r.ID)
	e.ok(cmd.UserExtID, "close")
}

func (e *Engine) handleJoin(cmd Command) {
	joiner := e.arena.UserByExtID(cmd.UserExtID)
	if joiner == nil || joiner.RID != 0 {
		e.fail(cmd.UserExtID, "join", status.Error(codes.FailedPrecondition, "already in a room"))
		return
	}
	target := e.roomByMaster(cmd.TargetExtID)
	if target == nil {
		e.fail(cmd.UserExtID, "join", status.Error(codes.NotFound, "room not found"))
		return
	}
	if target.Ready != domain.ReadyIdle {
		e.fail(cmd.UserExtID, "join", status.Error(codes.FailedPrecondition, "room not idle"))
		return
	}
	if target.Size() >= domain.TeamSizeForMode(target.Mode) {
		e.fail(cmd.UserExtID, "join", status.Error(codes.ResourceExhausted, "room full"))
		return
	}
	e.arena.AddUserToRoom(target, joiner)
	e.broadcastRoomUpdate(target)
}

func (e *Engine) handleLeave(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil || u.RID == 0 {
		e.fail(cmd.UserExtID, "leave", status.Error(codes.FailedPrecondition, "no room"))
		return
	}
	r := e.arena.Room(u.RID)
	if r == nil {
		e.fail(cmd.UserExtID, "leave", status.Error(codes.NotFound, "room not found"))
		return
	}
	empty := e.arena.RemoveUserFromRoom(r, u.ID)
	if empty {
		e.dequeueRoom(r.ID)
		e.detachFromGroup(r.ID)
		e.arena.DeleteRoom(r.ID)
	} else {
		e.broadcastRoomUpdate(r)
	}
	e.ok(cmd.UserExtID, "leave")
}

func (e *Engine) handleInvite(cmd Command) {
	inviter := e.arena.UserByExtID(cmd.UserExtID)
	if inviter == nil {
		e.fail(cmd.UserExtID, "invite", status.Error(codes.NotFound, "user not found"))
		return
	}
	// Fire-and-forget relay: no check that the target is online or
	// eligible to receive invites.
	e.publish(memberTopic(cmd.TargetExtID, "invite"), map[string]string{"from": inviter.ExtID})
	e.ok(cmd.UserExtID, "invite")
}

func (e *Engine) handleChooseNGHero(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		e.fail(cmd.UserExtID, "choose_hero", status.Error(codes.NotFound, "user not found"))
		return
	}
	u.Hero = cmd.Hero
	e.ok(cmd.UserExtID, "choose_hero")
}

func (e *Engine) handleStartQueue(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil || u.RID == 0 {
		e.fail(cmd.UserExtID, "start_queue", status.Error(codes.FailedPrecondition, "no room"))
		return
	}
	r := e.arena.Room(u.RID)
	if r == nil || r.Ready != domain.ReadyIdle {
		e.fail(cmd.UserExtID, "start_queue", status.Error(codes.FailedPrecondition, "room not idle"))
		return
	}
	e.enqueueRoom(r.ID)
	e.ok(cmd.UserExtID, "start_queue")
}

func (e *Engine) handleCancelQueue(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil || u.RID == 0 {
		e.fail(cmd.UserExtID, "cancel_queue", status.Error(codes.FailedPrecondition, "no room"))
		return
	}
	r := e.arena.Room(u.RID)
	if r == nil {
		e.fail(cmd.UserExtID, "cancel_queue", status.Error(codes.NotFound, "room not found"))
		return
	}
	e.dequeueRoom(r.ID)
	e.dissolveGroupFor(r.ID)
	e.ok(cmd.UserExtID, "cancel_queue")
}

func (e *Engine) handlePreStart(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil || u.GID == 0 {
		e.fail(cmd.UserExtID, "prestart", status.Error(codes.FailedPrecondition, "no ready group"))
		return
	}
	g := e.arena.Group(u.GID)
	if g == nil {
		e.fail(cmd.UserExtID, "prestart", status.Error(codes.NotFound, "group not found"))
		return
	}
	if cmd.Accept {
		g.UserReady(u.ID)
		e.ok(cmd.UserExtID, "start")
		return
	}
	g.UserCancel(u.ID)
	// A group already paired into a pending match keeps its board so the
	// prestart sweep sees the decline and cancels the whole match.
	if g.Status == domain.GroupForming {
		e.dissolveGroup(g)
	}
	e.ok(cmd.UserExtID, "cancel_queue")
}

func (e *Engine) handlePreStartGet(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		e.fail(cmd.UserExtID, "prestart_get", status.Error(codes.NotFound, "user not found"))
		return
	}
	u.PrestartGet = true
}

func (e *Engine) handleStartGame(cmd Command) {
	game := e.arena.GameByID(cmd.GameID)
	if game == nil {
		e.fail(cmd.UserExtID, "start_game", status.Error(codes.NotFound, "game not found"))
		return
	}
	e.publish(gameTopic(game.ID, "start_game"), gameCompositionView(e.arena, game))
	for _, rid := range game.RoomNames {
		if r := e.arena.Room(rid); r != nil {
			e.publish(roomTopic(e.arena.User(r.Master).ExtID, "start_game"), map[string]any{
				"game_id":     game.ID,
				"server_name": game.ServerName,
				"game_port":   game.GamePort,
			})
		}
	}
}

func (e *Engine) handleGameOver(cmd Command) {
	game := e.arena.GameByID(cmd.GameID)
	if game == nil {
		e.fail(cmd.UserExtID, "game_over", status.Error(codes.NotFound, "game not found"))
		return
	}
	e.settle(game, cmd.WinnerExt, cmd.LoserExt)
	e.teardownGame(game)
}

func (e *Engine) handleGameClose(cmd Command) {
	game := e.arena.GameByID(cmd.GameID)
	if game == nil {
		e.fail(cmd.UserExtID, "game_close", status.Error(codes.NotFound, "game not found"))
		return
	}
	e.teardownGame(game)
}

func (e *Engine) handleStatus(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		e.publish(memberTopic(cmd.UserExtID, "status"), map[string]string{"status": "id not found"})
		return
	}
	if u.GameID != 0 {
		e.publish(memberTopic(cmd.UserExtID, "status"), map[string]string{"status": "gaming"})
		return
	}
	e.publish(memberTopic(cmd.UserExtID, "status"), map[string]string{"status": "normal"})
}

func (e *Engine) handleReconnect(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil || u.GameID == 0 {
		e.fail(cmd.UserExtID, "reconnect", status.Error(codes.FailedPrecondition, "not in an active game"))
		return
	}
	game := e.arena.GameByID(u.GameID)
	if game == nil {
		e.fail(cmd.UserExtID, "reconnect", status.Error(codes.NotFound, "game not found"))
		return
	}
	e.publish(memberTopic(cmd.UserExtID, "reconnect"), map[string]any{
		"server_name": game.ServerName,
		"game_port":   game.GamePort,
	})
}

// handleBlock records that the caller never wants to be grouped with
// TargetExtID again, consulted by the matcher sweep's room admission check.
func (e *Engine) handleBlock(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		e.fail(cmd.UserExtID, "block", status.Error(codes.NotFound, "user not found"))
		return
	}
	target := e.arena.UserByExtID(cmd.TargetExtID)
	if target == nil {
		e.fail(cmd.UserExtID, "block", status.Error(codes.NotFound, "target not found"))
		return
	}
	u.Block(target.ID)
	e.ok(cmd.UserExtID, "block")
}

func (e *Engine) handleUnblock(cmd Command) {
	u := e.arena.UserByExtID(cmd.UserExtID)
	if u == nil {
		e.fail(cmd.UserExtID, "unblock", status.Error(codes.NotFound, "user not found"))
		return
	}
	target := e.arena.UserByExtID(cmd.TargetExtID)
	if target == nil {
		e.fail(cmd.UserExtID, "unblock", status.Error(codes.NotFound, "target not found"))
		return
	}
	u.Unblock(target.ID)
	e.ok(cmd.UserExtID, "unblock")
}

func (e *Engine) handleReset(cmd Command) {
	e.arena.Reset()
	e.queueRoom = nil
	e.queueSet = make(map[domain.RoomID]struct{})
	e.readyGroups = nil
	e.readySet = make(map[domain.GroupID]struct{})
	e.preStartGames = nil
	e.preStartSet = make(map[domain.GameID]struct{})
	e.gamingGames = make(map[domain.GameID]*lifecycle.Controller)
	e.log.Info("engine reset")
}

// --- queue/group/game bookkeeping shared by several handlers ---

func (e *Engine) enqueueRoom(id domain.RoomID) {
	if _, ok := e.queueSet[id]; ok {
		return
	}
	e.queueRoom = append(e.queueRoom, id)
	e.queueSet[id] = struct{}{}
}

func (e *Engine) dequeueRoom(id domain.RoomID) {
	if _, ok := e.queueSet[id]; !ok {
		return
	}
	delete(e.queueSet, id)
	for i, rid := range e.queueRoom {
		if rid == id {
			e.queueRoom = append(e.queueRoom[:i], e.queueRoom[i+1:]...)
			break
		}
	}
}

// detachFromGroup dissolves any ready group a room belongs to (used when a
// member leaves mid-forming, not just on explicit cancel).
func (e *Engine) detachFromGroup(rid domain.RoomID) {
	for gid := range e.readySet {
		if g := e.arena.Group(gid); g != nil && g.HasRoom(rid) {
			e.dissolveGroup(g)
			return
		}
	}
}

func (e *Engine) dissolveGroupFor(rid domain.RoomID) {
	e.detachFromGroup(rid)
}

// dissolveGroup clears a group's rooms back to Idle and removes it from
// ReadyGroups.
func (e *Engine) dissolveGroup(g *domain.FightGroup) {
	for _, rid := range g.Rooms {
		if r := e.arena.Room(rid); r != nil {
			e.arena.ClearQueue(r)
			r.Ready = domain.ReadyIdle
			e.broadcastRoomUpdate(r)
		}
	}
	delete(e.readySet, g.ID)
	for i, gid := range e.readyGroups {
		if gid == g.ID {
			e.readyGroups = append(e.readyGroups[:i], e.readyGroups[i+1:]...)
			break
		}
	}
	e.arena.DeleteGroup(g.ID)
}

// teardownGame removes every room of both of a game's groups from the
// active lifecycle (shared by GameOver and GameClose).
func (e *Engine) teardownGame(game *domain.FightGame) {
	for _, gid := range game.Teams {
		g := e.arena.Group(gid)
		if g == nil {
			continue
		}
		for _, rid := range g.Rooms {
			if r := e.arena.Room(rid); r != nil {
				e.dequeueRoom(r.ID)
				e.arena.LeaveRoom(r)
				e.arena.DeleteRoom(r.ID)
			}
		}
		delete(e.readySet, g.ID)
		e.arena.DeleteGroup(g.ID)
	}
	delete(e.preStartSet, game.ID)
	delete(e.gamingGames, game.ID)
	e.arena.DeleteGame(game.ID)
}

func gameCompositionView(a *domain.Arena, g *domain.FightGame) map[string]any {
	names := make([]string, 0, len(g.UserNames))
	for _, uid := range g.UserNames {
		if u := a.User(uid); u != nil {
			names = append(names, u.ExtID)
		}
	}
	return map[string]any{
		"game_id": g.ID,
		"mode":    g.Mode,
		"users":   names,
	}
}
