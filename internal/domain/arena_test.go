package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomMasterIsSoleMember(t *testing.T) {
	a := NewArena()
	u := a.CreateUser("steam:1", 1000)
	r := a.CreateRoom(ModeNG5v5, u)

	require.Equal(t, 1, r.Size())
	assert.Equal(t, u.ID, r.Master)
	assert.Equal(t, u.ID, r.Users[0])
	assert.Equal(t, r.ID, u.RID)
}

func TestAddUserToRoomRecomputesAverages(t *testing.T) {
	a := NewArena()
	master := a.CreateUser("steam:1", 1000)
	r := a.CreateRoom(ModeNG5v5, master)

	second := a.CreateUser("steam:2", 2000)
	a.AddUserToRoom(r, second)

	assert.Equal(t, 1500, r.AvgForBucket(BucketNG5v5))
}

func TestRemoveUserFromRoomPromotesNewMaster(t *testing.T) {
	a := NewArena()
	master := a.CreateUser("steam:1", 1000)
	r := a.CreateRoom(ModeNG5v5, master)
	second := a.CreateUser("steam:2", 1000)
	a.AddUserToRoom(r, second)

	empty := a.RemoveUserFromRoom(r, master.ID)
	require.False(t, empty)
	assert.Equal(t, second.ID, r.Master)
	assert.Equal(t, master.ID, r.LastMaster)
}

func TestRemoveLastUserEmptiesRoom(t *testing.T) {
	a := NewArena()
	master := a.CreateUser("steam:1", 1000)
	r := a.CreateRoom(ModeNG5v5, master)

	empty := a.RemoveUserFromRoom(r, master.ID)
	assert.True(t, empty)
	assert.Equal(t, 0, r.Size())
}

func TestCheckPrestartGetRequiresAllMembers(t *testing.T) {
	a := NewArena()
	master := a.CreateUser("steam:1", 1000)
	r := a.CreateRoom(ModeNG5v5, master)
	second := a.CreateUser("steam:2", 1000)
	a.AddUserToRoom(r, second)

	a.UserPrestart(r)
	assert.False(t, a.CheckPrestartGet(r))

	master.PrestartGet = true
	assert.False(t, a.CheckPrestartGet(r))

	second.PrestartGet = true
	assert.True(t, a.CheckPrestartGet(r))
}

func TestCheckPrestartGetEmptyRoomIsFalse(t *testing.T) {
	a := NewArena()
	r := &Room{ID: 99}
	assert.False(t, a.CheckPrestartGet(r))
}

func TestGroupPrestartSeedsCheckBoard(t *testing.T) {
	a := NewArena()
	u1 := a.CreateUser("steam:1", 1000)
	r1 := a.CreateRoom(ModeNG5v5, u1)
	u2 := a.CreateUser("steam:2", 1000)
	r2 := a.CreateRoom(ModeNG5v5, u2)

	g := a.CreateGroup(ModeNG5v5)
	a.AddRoomToGroup(g, r1)
	a.AddRoomToGroup(g, r2)
	a.GroupPrestart(g)

	require.Len(t, g.Checks, 2)
	assert.Equal(t, ReadyInPrestart, r1.Ready)
	assert.True(t, u1.StartPrestart)
	assert.Equal(t, PrestartWait, g.CheckPrestart())

	g.UserReady(u1.ID)
	g.UserReady(u2.ID)
	assert.Equal(t, PrestartReady, g.CheckPrestart())
}

func TestGroupCheckPrestartCancelsOnDecline(t *testing.T) {
	a := NewArena()
	u1 := a.CreateUser("steam:1", 1000)
	r1 := a.CreateRoom(ModeNG1v1, u1)
	g := a.CreateGroup(ModeNG1v1)
	a.AddRoomToGroup(g, r1)
	a.GroupPrestart(g)

	g.UserCancel(u1.ID)
	assert.Equal(t, PrestartCancel, g.CheckPrestart())
}

func TestSetGameIDStampsAllMembers(t *testing.T) {
	a := NewArena()
	u1 := a.CreateUser("steam:1", 1000)
	r1 := a.CreateRoom(ModeNG1v1, u1)
	u2 := a.CreateUser("steam:2", 1000)
	r2 := a.CreateRoom(ModeNG1v1, u2)

	g1 := a.CreateGroup(ModeNG1v1)
	a.AddRoomToGroup(g1, r1)
	g2 := a.CreateGroup(ModeNG1v1)
	a.AddRoomToGroup(g2, r2)

	game := a.CreateGame(ModeNG1v1, g1.ID, g2.ID)
	a.SetGameID(game)

	assert.Equal(t, game.ID, u1.GameID)
	assert.Equal(t, game.ID, u2.GameID)
	assert.Equal(t, ReadyInPrestart, r1.Ready)
}

func TestUpdateNamesTraversalOrder(t *testing.T) {
	a := NewArena()
	u1 := a.CreateUser("steam:1", 1000)
	r1 := a.CreateRoom(ModeNG1v1, u1)
	u2 := a.CreateUser("steam:2", 1000)
	r2 := a.CreateRoom(ModeNG1v1, u2)

	g1 := a.CreateGroup(ModeNG1v1)
	a.AddRoomToGroup(g1, r1)
	g2 := a.CreateGroup(ModeNG1v1)
	a.AddRoomToGroup(g2, r2)

	game := a.CreateGame(ModeNG1v1, g1.ID, g2.ID)
	a.UpdateNames(game)

	require.Equal(t, []RoomID{r1.ID, r2.ID}, game.RoomNames)
	require.Equal(t, []UserID{u1.ID, u2.ID}, game.UserNames)
}

func TestGameCheckPrestartWaitsOnBothTeams(t *testing.T) {
	a := NewArena()
	u1 := a.CreateUser("steam:1", 1000)
	r1 := a.CreateRoom(ModeNG1v1, u1)
	u2 := a.CreateUser("steam:2", 1000)
	r2 := a.CreateRoom(ModeNG1v1, u2)

	g1 := a.CreateGroup(ModeNG1v1)
	a.AddRoomToGroup(g1, r1)
	a.GroupPrestart(g1)
	g2 := a.CreateGroup(ModeNG1v1)
	a.AddRoomToGroup(g2, r2)
	a.GroupPrestart(g2)

	game := a.CreateGame(ModeNG1v1, g1.ID, g2.ID)

	assert.Equal(t, PrestartWait, a.GameCheckPrestart(game))

	g1.UserReady(u1.ID)
	assert.Equal(t, PrestartWait, a.GameCheckPrestart(game))

	g2.UserReady(u2.ID)
	assert.Equal(t, PrestartReady, a.GameCheckPrestart(game))
}

func TestResetClearsAllTablesAndCounters(t *testing.T) {
	a := NewArena()
	u := a.CreateUser("steam:1", 1000)
	a.CreateRoom(ModeNG1v1, u)

	a.Reset()

	assert.Empty(t, a.Users())
	assert.Empty(t, a.Rooms())
	u2 := a.CreateUser("steam:1", 1000)
	assert.Equal(t, UserID(1), u2.ID)
}
