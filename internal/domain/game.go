package domain

// FightGame pairs two FightGroups (the two sides) once a match has been
// formed, carrying the broadcast-facing denormalised name lists and the
// server assignment. It owns no users directly — ownership stays in the
// user arena.
type FightGame struct {
	ID    GameID
	Mode  Mode
	Teams [2]GroupID

	GamePort   uint16
	ServerName string

	RoomNames []RoomID // traversal order: team0 rooms, then team1 rooms
	UserNames []UserID // traversal order within each room

	ServerReady bool

	WinTeam  int // index into Teams, -1 until settled
	LoseTeam int
}

// NewFightGame constructs a game in its unsettled state.
func NewFightGame(id GameID, mode Mode, team0, team1 GroupID) *FightGame {
	return &FightGame{
		ID:       id,
		Mode:     mode,
		Teams:    [2]GroupID{team0, team1},
		WinTeam:  -1,
		LoseTeam: -1,
	}
}

// TeamIndexOf returns which side (0 or 1) a group belongs to, or -1.
func (f *FightGame) TeamIndexOf(gid GroupID) int {
	for i, t := range f.Teams {
		if t == gid {
			return i
		}
	}
	return -1
}
