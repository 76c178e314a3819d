package engine

import (
	"context"
	"time"
)

// Snapshot is a read-only, point-in-time view of the engine's queues, for
// the admin API's dashboard. Built entirely on the engine goroutine and
// handed across the channel by value — nothing in it aliases arena state,
// so the admin API can read it from any goroutine without a lock.
type Snapshot struct {
	QueuedRooms     int            `json:"queued_rooms"`
	ReadyGroups     int            `json:"ready_groups"`
	PreStartGames   int            `json:"prestart_games"`
	GamingGames     int            `json:"gaming_games"`
	OnlineUsers     int            `json:"online_users"`
	QueuedByMode    map[string]int `json:"queued_by_mode"`
	GamingByMode    map[string]int `json:"gaming_by_mode"`
	TakenAt         time.Time      `json:"taken_at"`
}

// Stats asks the engine goroutine for a Snapshot and blocks until it
// answers or ctx is done. Safe to call from any goroutine — it never
// touches the arena directly.
func (e *Engine) Stats(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := e.Submit(Command{Kind: AdminSnapshot, Reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (e *Engine) handleAdminSnapshot(cmd Command) {
	if cmd.Reply == nil {
		return
	}
	snap := Snapshot{
		QueuedRooms:   len(e.queueRoom),
		ReadyGroups:   len(e.readyGroups),
		PreStartGames: len(e.preStartGames),
		GamingGames:   len(e.gamingGames),
		QueuedByMode:  map[string]int{},
		GamingByMode:  map[string]int{},
		TakenAt:       e.clock.Now(),
	}
	for _, rid := range e.queueRoom {
		if r := e.arena.Room(rid); r != nil {
			snap.QueuedByMode[string(r.Mode)]++
		}
	}
	for gid := range e.gamingGames {
		if g := e.arena.GameByID(gid); g != nil {
			snap.GamingByMode[string(g.Mode)]++
		}
	}
	for _, u := range e.arena.Users() {
		if u.Online {
			snap.OnlineUsers++
		}
	}
	select {
	case cmd.Reply <- snap:
	default:
	}
}
