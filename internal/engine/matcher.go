package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/sonicrain/matchd/internal/domain"
	"github.com/sonicrain/matchd/internal/metrics"
)

// matcherSweep runs once per fast tick: first form ready groups out of
// queued rooms, then pair ready groups into matches.
func (e *Engine) matcherSweep() {
	e.formReadyGroups()
	e.pairReadyGroups()
}

// formReadyGroups walks QueueRoom sorted ascending by the mode's primary
// rating bucket, greedily filling one group at a time. A room is
// admissible into the current accumulator iff it fits without exceeding
// TeamSize, its average is within ScoreInterval of the accumulator's (or
// the accumulator is still empty), and none of its users blocks, or is
// blocked by, anyone already accumulated. A room whose users faced someone
// already accumulated as an opponent in their most recent match is skipped
// too, but only as long
// as another candidate is available this sweep — that avoidance is a
// preference, not a hard rule.
func (e *Engine) formReadyGroups() {
	byMode := map[domain.Mode][]domain.RoomID{}
	for _, rid := range e.queueRoom {
		r := e.arena.Room(rid)
		if r == nil {
			continue
		}
		byMode[r.Mode] = append(byMode[r.Mode], rid)
	}

	for mode, rooms := range byMode {
		bucket := domain.PrimaryBucket(mode)
		sort.SliceStable(rooms, func(i, j int) bool {
			ri, rj := e.arena.Room(rooms[i]), e.arena.Room(rooms[j])
			return ri.AvgForBucket(bucket) < rj.AvgForBucket(bucket)
		})

		var acc []domain.RoomID
		accSize := 0
		teamSize := domain.TeamSizeForMode(mode)

		flush := func() {
			if len(acc) == 0 {
				return
			}
			g := e.arena.CreateGroup(mode)
			for _, rid := range acc {
				r := e.arena.Room(rid)
				e.arena.AddRoomToGroup(g, r)
				r.Ready = domain.ReadyQueuedMatched
				for _, uid := range r.Users {
					if u := e.arena.User(uid); u != nil {
						u.GID = g.ID
					}
				}
				e.dequeueRoom(rid)
			}
			e.readyGroups = append(e.readyGroups, g.ID)
			e.readySet[g.ID] = struct{}{}
			e.publish(groupTopic(g.ID, "ready"), map[string]any{"group_id": g.ID, "mode": mode})
			acc = nil
			accSize = 0
		}

		// admit tests whether rid can join the accumulator. Team-size and
		// rating-interval are hard constraints, same as a blocked user being
		// present on either side — never relaxed. Recent-opponent overlap is
		// only a preference: admit reports it separately so the caller can
		// retry once the strict pass runs dry instead of leaving the group
		// unfilled over two players who merely played together recently.
		admit := func(rid domain.RoomID, r *domain.Room, allowRecentOverlap bool) (admitted, overlapOnly bool) {
			if accSize+r.Size() > teamSize {
				return false, false
			}
			if accSize > 0 {
				groupAvg := acc0Avg(e.arena, acc, bucket)
				if abs(groupAvg-r.AvgForBucket(bucket)) > ScoreInterval {
					return false, false
				}
			}
			accUsers := flattenRoomIDUsers(e.arena, acc)
			if anyBlocked(e.arena, r.Users, accUsers) {
				return false, false
			}
			if !allowRecentOverlap && anyRecentOpponent(e.arena, r.Users, accUsers) {
				return false, true
			}
			acc = append(acc, rid)
			accSize += r.Size()
			if accSize == teamSize {
				flush()
			}
			return true, false
		}

		var deferredForOverlap []domain.RoomID
		for _, rid := range rooms {
			r := e.arena.Room(rid)
			if r == nil {
				continue
			}
			if admitted, overlapOnly := admit(rid, r, false); !admitted && overlapOnly {
				deferredForOverlap = append(deferredForOverlap, rid)
			}
		}
		// Avoiding recent opponents is a preference, not a requirement: once
		// the strict pass over this tick's rooms is exhausted, fall back to
		// the deferred ones rather than leave a group permanently unfilled.
		for _, rid := range deferredForOverlap {
			if accSize == teamSize {
				break
			}
			if r := e.arena.Room(rid); r != nil {
				admit(rid, r, true)
			}
		}

		metrics.RoomsQueued.WithLabelValues(string(mode)).Set(float64(len(rooms) - sumSizes(e.arena, acc)))
		metrics.GroupsForming.WithLabelValues(string(mode)).Set(float64(countGroupsInMode(e.arena, e.readyGroups, mode)))
	}
}

// flattenRoomIDUsers collects the user ids seated across a set of rooms,
// used to check a candidate room against everyone already accumulated into
// a forming group.
func flattenRoomIDUsers(a *domain.Arena, rooms []domain.RoomID) []domain.UserID {
	var ids []domain.UserID
	for _, rid := range rooms {
		if r := a.Room(rid); r != nil {
			ids = append(ids, r.Users...)
		}
	}
	return ids
}

// anyBlocked reports whether any user in candidate has blocked, or is
// blocked by, any user already in acc — blocking is one-directional per
// User.IsBlocked, so both directions are checked here.
func anyBlocked(a *domain.Arena, candidate, acc []domain.UserID) bool {
	for _, cid := range candidate {
		cu := a.User(cid)
		if cu == nil {
			continue
		}
		for _, aid := range acc {
			if cu.IsBlocked(aid) {
				return true
			}
			if au := a.User(aid); au != nil && au.IsBlocked(cid) {
				return true
			}
		}
	}
	return false
}

// anyRecentOpponent reports whether any user in candidate most recently
// faced, as an opponent, any user already in acc. RecordOpponents is
// populated symmetrically on both sides of a settled match, but the check
// is run both ways regardless in case that ever changes.
func anyRecentOpponent(a *domain.Arena, candidate, acc []domain.UserID) bool {
	recentlyFaced := func(u *domain.User, other domain.UserID) bool {
		return u != nil && len(u.RecentOpponents) > 0 && lo.Contains(u.RecentOpponents[0], other)
	}
	for _, cid := range candidate {
		cu := a.User(cid)
		for _, aid := range acc {
			if recentlyFaced(cu, aid) || recentlyFaced(a.User(aid), cid) {
				return true
			}
		}
	}
	return false
}

func sumSizes(a *domain.Arena, rooms []domain.RoomID) int {
	present := lo.Filter(rooms, func(rid domain.RoomID, _ int) bool { return a.Room(rid) != nil })
	return lo.SumBy(present, func(rid domain.RoomID) int { return a.Room(rid).Size() })
}

func countGroupsInMode(a *domain.Arena, groups []domain.GroupID, mode domain.Mode) int {
	return lo.CountBy(groups, func(gid domain.GroupID) bool {
		g := a.Group(gid)
		return g != nil && g.Mode == mode
	})
}

// acc0Avg recomputes the running user-count-weighted average for a
// tentative accumulator without needing a materialised FightGroup.
func acc0Avg(a *domain.Arena, acc []domain.RoomID, bucket domain.RatingBucket) int {
	var sum, n int
	for _, rid := range acc {
		r := a.Room(rid)
		if r == nil {
			continue
		}
		sum += r.AvgForBucket(bucket) * r.Size()
		n += r.Size()
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pairReadyGroups accumulates up to MatchSize groups per match, admitting
// each candidate only if its average is within ScoreInterval of the
// running mean of already-admitted groups.
func (e *Engine) pairReadyGroups() {
	byMode := map[domain.Mode][]domain.GroupID{}
	for _, gid := range e.readyGroups {
		g := e.arena.Group(gid)
		if g == nil || g.Status != domain.GroupForming {
			continue
		}
		byMode[g.Mode] = append(byMode[g.Mode], gid)
	}

	for mode, groups := range byMode {
		bucket := domain.PrimaryBucket(mode)
		var acc []domain.GroupID

		flush := func() {
			if len(acc) < MatchSize {
				return
			}
			game := e.arena.CreateGame(mode, acc[0], acc[1])
			for _, gid := range acc {
				g := e.arena.Group(gid)
				g.Status = domain.GroupPrestarting
				e.arena.GroupPrestart(g)
				e.removeReadyGroup(gid)
			}
			e.arena.SetGameID(game)
			e.arena.UpdateNames(game)
			for _, gid := range acc {
				g := e.arena.Group(gid)
				for _, rid := range g.Rooms {
					if r := e.arena.Room(rid); r != nil {
						e.publish(roomTopic(e.arena.User(r.Master).ExtID, "prestart"), map[string]any{"game_id": game.ID})
					}
				}
			}
			e.preStartGames = append(e.preStartGames, game.ID)
			e.preStartSet[game.ID] = struct{}{}
			metrics.MatchesFormed.WithLabelValues(string(mode)).Inc()
			acc = nil
		}

		for _, gid := range groups {
			g := e.arena.Group(gid)
			if g == nil {
				continue
			}
			if len(acc) > 0 {
				mean := groupMean(e.arena, acc, bucket)
				if abs(mean-g.AvgForBucket(bucket)) > ScoreInterval {
					continue
				}
			}
			acc = append(acc, gid)
			if len(acc) == MatchSize {
				flush()
			}
		}
	}
}

func (e *Engine) removeReadyGroup(id domain.GroupID) {
	delete(e.readySet, id)
	for i, gid := range e.readyGroups {
		if gid == id {
			e.readyGroups = append(e.readyGroups[:i], e.readyGroups[i+1:]...)
			break
		}
	}
}

func groupMean(a *domain.Arena, acc []domain.GroupID, bucket domain.RatingBucket) int {
	var sum, n int
	for _, gid := range acc {
		g := a.Group(gid)
		if g == nil {
			continue
		}
		sum += g.AvgForBucket(bucket)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
