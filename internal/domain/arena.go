package domain

// Arena owns every in-memory table the engine mutates: the user table, the
// room table, the ready-group table, and the game table. Exactly one
// goroutine (the event engine) ever calls into an Arena, so no locking is
// needed. Members reference each other by integer handle and look each
// other up through the Arena rather than holding direct pointers, so
// nothing here needs reference counting or back-pointers.
type Arena struct {
	users  map[UserID]*User
	rooms  map[RoomID]*Room
	groups map[GroupID]*FightGroup
	games  map[GameID]*FightGame

	userIDs  IDAllocator
	roomIDs  IDAllocator
	groupIDs IDAllocator
	gameIDs  IDAllocator
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		users:  make(map[UserID]*User),
		rooms:  make(map[RoomID]*Room),
		groups: make(map[GroupID]*FightGroup),
		games:  make(map[GameID]*FightGame),
	}
}

// Reset clears every table and zeroes all id counters (the engine's Reset
// command).
func (a *Arena) Reset() {
	a.users = make(map[UserID]*User)
	a.rooms = make(map[RoomID]*Room)
	a.groups = make(map[GroupID]*FightGroup)
	a.games = make(map[GameID]*FightGame)
	a.userIDs.Reset()
	a.roomIDs.Reset()
	a.groupIDs.Reset()
	a.gameIDs.Reset()
}

// --- users ---

// User returns the user with the given id, or nil.
func (a *Arena) User(id UserID) *User { return a.users[id] }

// UserByExtID linearly scans for a user by external bus identity. Every
// command handler and settlement resolve their users through it; user
// tables stay small enough that an index is not worth the bookkeeping.
func (a *Arena) UserByExtID(extID string) *User {
	for _, u := range a.users {
		if u.ExtID == extID {
			return u
		}
	}
	return nil
}

// CreateUser allocates a new user handle and stores it.
func (a *Arena) CreateUser(extID string, seedScore int) *User {
	id := UserID(a.userIDs.Next())
	u := NewUser(id, extID, seedScore)
	a.users[id] = u
	return u
}

// --- rooms ---

func (a *Arena) Room(id RoomID) *Room { return a.rooms[id] }

// CreateRoom allocates a new room with a sole member who becomes master.
func (a *Arena) CreateRoom(mode Mode, master *User) *Room {
	id := RoomID(a.roomIDs.Next())
	r := &Room{ID: id, Mode: mode, Master: master.ID}
	a.rooms[id] = r
	a.AddUserToRoom(r, master)
	return r
}

// DeleteRoom removes a room from the arena (it must already be empty).
func (a *Arena) DeleteRoom(id RoomID) {
	delete(a.rooms, id)
}

// AddUserToRoom appends u to r, sets u.RID, and recomputes aggregates.
func (a *Arena) AddUserToRoom(r *Room, u *User) {
	u.RID = r.ID
	r.Users = append(r.Users, u.ID)
	a.recomputeRoomAvg(r)
}

// RemoveUserFromRoom removes id from r, promoting a new master from the
// head of the remaining roster if id was master, and recomputes aggregates.
// Returns true if the room is now empty.
func (a *Arena) RemoveUserFromRoom(r *Room, id UserID) bool {
	for i, u := range r.Users {
		if u == id {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			break
		}
	}
	if r.Master == id && len(r.Users) > 0 {
		r.LastMaster = r.Master
		r.Master = r.Users[0]
	}
	if leaver := a.users[id]; leaver != nil {
		leaver.RID = 0
	}
	a.recomputeRoomAvg(r)
	return len(r.Users) == 0
}

// LeaveRoom clears rid/gid/game_id for every member of r and resets ready.
func (a *Arena) LeaveRoom(r *Room) {
	for _, uid := range r.Users {
		if u := a.users[uid]; u != nil {
			u.RID = 0
			u.GID = 0
			u.GameID = 0
		}
	}
	r.Ready = ReadyIdle
}

// UserPrestart sets start_prestart=true, prestart_get=false on every member.
func (a *Arena) UserPrestart(r *Room) {
	for _, uid := range r.Users {
		if u := a.users[uid]; u != nil {
			u.StartPrestart = true
			u.PrestartGet = false
		}
	}
}

// CheckPrestartGet returns true iff every member's prestart_get is true.
// A room with no members vacuously returns false.
func (a *Arena) CheckPrestartGet(r *Room) bool {
	if len(r.Users) == 0 {
		return false
	}
	for _, uid := range r.Users {
		u := a.users[uid]
		if u == nil || !u.PrestartGet {
			return false
		}
	}
	return true
}

// ClearQueue clears gid and game_id on every member of r and resets ready.
func (a *Arena) ClearQueue(r *Room) {
	for _, uid := range r.Users {
		if u := a.users[uid]; u != nil {
			u.GID = 0
			u.GameID = 0
		}
	}
	r.Ready = ReadyIdle
}

func (a *Arena) recomputeRoomAvg(r *Room) {
	n := len(r.Users)
	if n == 0 {
		r.AvgNG1v1, r.AvgRK1v1, r.AvgNG5v5, r.AvgRK5v5, r.AvgHonor = 0, 0, 0, 0, 0
		return
	}
	var sumNG1, sumRK1, sumNG5, sumRK5, sumHonor int
	for _, uid := range r.Users {
		u := a.users[uid]
		if u == nil {
			continue
		}
		sumNG1 += u.Rating(BucketNG1v1).Score
		sumRK1 += u.Rating(BucketRK1v1).Score
		sumNG5 += u.Rating(BucketNG5v5).Score
		sumRK5 += u.Rating(BucketRK5v5).Score
		sumHonor += u.Honor
	}
	r.AvgNG1v1 = sumNG1 / n
	r.AvgRK1v1 = sumRK1 / n
	r.AvgNG5v5 = sumNG5 / n
	r.AvgRK5v5 = sumRK5 / n
	r.AvgHonor = sumHonor / n
}

// --- groups ---

func (a *Arena) Group(id GroupID) *FightGroup { return a.groups[id] }

// CreateGroup allocates a new, empty ready group for the given mode.
func (a *Arena) CreateGroup(mode Mode) *FightGroup {
	id := GroupID(a.groupIDs.Next())
	g := &FightGroup{ID: id, Mode: mode, rids: make(map[RoomID]struct{})}
	a.groups[id] = g
	return g
}

// DeleteGroup removes a group from the arena.
func (a *Arena) DeleteGroup(id GroupID) {
	delete(a.groups, id)
}

// AddRoomToGroup appends r to g, registers its rid, and recomputes
// aggregates.
func (a *Arena) AddRoomToGroup(g *FightGroup, r *Room) {
	g.Rooms = append(g.Rooms, r.ID)
	g.rids[r.ID] = struct{}{}
	a.recomputeGroupAvg(g)
}

func (a *Arena) recomputeGroupAvg(g *FightGroup) {
	var sumNG1, sumRK1, sumNG5, sumRK5, sumHonor, n int
	for _, rid := range g.Rooms {
		r := a.rooms[rid]
		if r == nil {
			continue
		}
		size := r.Size()
		sumNG1 += r.AvgNG1v1 * size
		sumRK1 += r.AvgRK1v1 * size
		sumNG5 += r.AvgNG5v5 * size
		sumRK5 += r.AvgRK5v5 * size
		sumHonor += r.AvgHonor * size
		n += size
	}
	if n == 0 {
		return
	}
	g.AvgNG1v1 = sumNG1 / n
	g.AvgRK1v1 = sumRK1 / n
	g.AvgNG5v5 = sumNG5 / n
	g.AvgRK5v5 = sumRK5 / n
	g.AvgHonor = sumHonor / n
}

// GroupPrestart clears the check-board, flips every room to In-prestart,
// and seeds one pending check entry per user.
func (a *Arena) GroupPrestart(g *FightGroup) {
	g.Checks = g.Checks[:0]
	for _, rid := range g.Rooms {
		r := a.rooms[rid]
		if r == nil {
			continue
		}
		r.Ready = ReadyInPrestart
		a.UserPrestart(r)
		for _, uid := range r.Users {
			g.Checks = append(g.Checks, GroupCheck{User: uid, State: CheckPending})
		}
	}
}

// GroupLeave tears a group's rooms back to an unattached state by calling
// LeaveRoom on each of them.
func (a *Arena) GroupLeave(g *FightGroup) {
	for _, rid := range g.Rooms {
		if r := a.rooms[rid]; r != nil {
			a.LeaveRoom(r)
		}
	}
}

// GroupClearQueue clears gid/game_id and resets ready on every room in g.
func (a *Arena) GroupClearQueue(g *FightGroup) {
	for _, rid := range g.Rooms {
		if r := a.rooms[rid]; r != nil {
			a.ClearQueue(r)
		}
	}
}

// --- games ---

func (a *Arena) GameByID(id GameID) *FightGame { return a.games[id] }

// CreateGame allocates a new game pairing two ready groups.
func (a *Arena) CreateGame(mode Mode, team0, team1 GroupID) *FightGame {
	id := GameID(a.gameIDs.Next())
	g := NewFightGame(id, mode, team0, team1)
	a.games[id] = g
	return g
}

// DeleteGame removes a game from the arena.
func (a *Arena) DeleteGame(id GameID) {
	delete(a.games, id)
}

// SetGameID stamps game_id on every user in both of the game's groups.
func (a *Arena) SetGameID(f *FightGame) {
	for _, gid := range f.Teams {
		g := a.groups[gid]
		if g == nil {
			continue
		}
		for _, rid := range g.Rooms {
			r := a.rooms[rid]
			if r == nil {
				continue
			}
			r.Ready = ReadyInPrestart
			for _, uid := range r.Users {
				if u := a.users[uid]; u != nil {
					u.GameID = f.ID
				}
			}
		}
	}
}

// UpdateNames rebuilds the denormalised room_names/user_names lists in
// deterministic traversal order: team 0's rooms (in insertion order, users
// in insertion order), then team 1's.
func (a *Arena) UpdateNames(f *FightGame) {
	f.RoomNames = f.RoomNames[:0]
	f.UserNames = f.UserNames[:0]
	for _, gid := range f.Teams {
		g := a.groups[gid]
		if g == nil {
			continue
		}
		for _, rid := range g.Rooms {
			r := a.rooms[rid]
			if r == nil {
				continue
			}
			f.RoomNames = append(f.RoomNames, rid)
			f.UserNames = append(f.UserNames, r.Users...)
		}
	}
}

// GameReady flips every room in both groups to Gaming.
func (a *Arena) GameReady(f *FightGame) {
	for _, gid := range f.Teams {
		g := a.groups[gid]
		if g == nil {
			continue
		}
		for _, rid := range g.Rooms {
			if r := a.rooms[rid]; r != nil {
				r.Ready = ReadyGaming
			}
		}
	}
}

// GameLeave tears down every room in both of the game's groups.
func (a *Arena) GameLeave(f *FightGame) {
	for _, gid := range f.Teams {
		if g := a.groups[gid]; g != nil {
			a.GroupLeave(g)
		}
	}
}

// GameClearQueue clears queue state on every room in both groups.
func (a *Arena) GameClearQueue(f *FightGame) {
	for _, gid := range f.Teams {
		if g := a.groups[gid]; g != nil {
			a.GroupClearQueue(g)
		}
	}
}

// GameCheckPrestart returns Cancel if either team's group check-board has a
// decline, Ready iff both are fully accepted, else Wait.
func (a *Arena) GameCheckPrestart(f *FightGame) PrestartStatus {
	result := PrestartReady
	for _, gid := range f.Teams {
		g := a.groups[gid]
		if g == nil {
			continue
		}
		switch g.CheckPrestart() {
		case PrestartCancel:
			return PrestartCancel
		case PrestartWait:
			result = PrestartWait
		}
	}
	return result
}

// Users exposes the raw table for read-only iteration (matcher sweep,
// admin snapshot).
func (a *Arena) Users() map[UserID]*User { return a.users }

// Rooms exposes the raw table for read-only iteration.
func (a *Arena) Rooms() map[RoomID]*Room { return a.rooms }

// Groups exposes the raw table for read-only iteration.
func (a *Arena) Groups() map[GroupID]*FightGroup { return a.groups }

// Games exposes the raw table for read-only iteration.
func (a *Arena) Games() map[GameID]*FightGame { return a.games }
