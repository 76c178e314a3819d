package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedSymmetry(t *testing.T) {
	for _, pair := range [][2]int{{1000, 1000}, {1500, 1000}, {800, 1200}} {
		a, b := pair[0], pair[1]
		assert.InDelta(t, 1.0, Expected(a, b)+Expected(b, a), 1e-6)
	}
}

func TestCompute1v1(t *testing.T) {
	e := New()

	w, l := e.Compute(1000, 1000)
	assert.Equal(t, 1010, w)
	assert.Equal(t, 990, l)

	// Winner already heavily favoured: expected(1500,1000) ~= 0.9468, so the
	// winner gains little and the loser loses little.
	w, l = e.Compute(1500, 1000)
	assert.Equal(t, 1501, w)
	assert.Equal(t, 999, l)
}

func TestComputeTeam(t *testing.T) {
	e := New()

	winners := []int{1200, 1210, 1190, 1230, 1250}
	losers := []int{1150, 1130, 1120, 1140, 1170}

	newWinners, newLosers := e.ComputeTeam(winners, losers)
	require := assert.New(t)
	require.Len(newWinners, 5)
	require.Len(newLosers, 5)

	for i, original := range winners {
		delta := newWinners[i] - original
		require.GreaterOrEqual(delta, 7)
		require.LessOrEqual(delta, 9)
	}
	for i, original := range losers {
		delta := original - newLosers[i]
		require.GreaterOrEqual(delta, 7)
		require.LessOrEqual(delta, 9)
	}
}

func TestComputeTeamEmptyIsNoop(t *testing.T) {
	e := New()
	w, l := e.ComputeTeam(nil, []int{1000})
	assert.Nil(t, w)
	assert.Nil(t, l)
}

func TestComputeTeamSettlementSumsToZero(t *testing.T) {
	e := New()
	winners := []int{1000, 1000, 1000}
	losers := []int{1100, 1100, 1100}

	newWinners, newLosers := e.ComputeTeam(winners, losers)

	winDelta := newWinners[0] - winners[0]
	loseDelta := losers[0] - newLosers[0]

	for i := range winners {
		assert.Equal(t, winDelta, newWinners[i]-winners[i])
	}
	for i := range losers {
		assert.Equal(t, loseDelta, losers[i]-newLosers[i])
	}
	assert.Greater(t, winDelta, 0)
	assert.Greater(t, loseDelta, 0)
	assert.Equal(t, winDelta*len(winners), loseDelta*len(losers))
}

func TestComputeBattleGroundHigherSeatsRewardedMore(t *testing.T) {
	e := New()
	team := []int{1000, 980, 990, 1010, 1020, 1005, 995, 990}
	deltas := e.ComputeBattleGround(team, 4, 0.4)
	require := assert.New(t)
	require.Len(deltas, len(team))
	for i := 1; i < len(deltas); i++ {
		require.GreaterOrEqual(deltas[i-1], deltas[i])
	}
}

func TestComputeBattleGroundEmpty(t *testing.T) {
	e := New()
	assert.Nil(t, e.ComputeBattleGround(nil, 4, 0.4))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3, Median([]int{5, 3, 1, 4, 2}))
	assert.Equal(t, 3, Median([]int{1, 2, 4, 5}))
	assert.Equal(t, 0, Median(nil))
}
