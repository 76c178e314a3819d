package engine

import (
	"github.com/sonicrain/matchd/internal/domain"
	"github.com/sonicrain/matchd/internal/metrics"
	"github.com/sonicrain/matchd/internal/persistence"
)

// settle computes the Elo delta over the winning and losing rosters'
// primary rating bucket, publishes each user's new rating, and enqueues a
// persistence update for each.
func (e *Engine) settle(game *domain.FightGame, winnerExt, loserExt []string) {
	bucket := domain.PrimaryBucket(game.Mode)

	winners := e.resolveUsers(winnerExt)
	losers := e.resolveUsers(loserExt)
	if len(winners) == 0 || len(losers) == 0 {
		e.log.Warn("game over with an empty side, skipping settlement")
		return
	}

	newWin, newLose := e.elo.ComputeTeam(scoresOf(winners, bucket), scoresOf(losers, bucket))

	e.applySettlement(winners, newWin, bucket, true, losers)
	e.applySettlement(losers, newLose, bucket, false, winners)

	game.WinTeam, game.LoseTeam = 0, 1
	if g := e.arena.Group(game.Teams[1]); g != nil && g.HasRoom(winners[0].RID) {
		game.WinTeam, game.LoseTeam = 1, 0
	}
	metrics.SettlementsTotal.WithLabelValues(string(game.Mode)).Inc()
}

func (e *Engine) resolveUsers(extIDs []string) []*domain.User {
	users := make([]*domain.User, 0, len(extIDs))
	for _, ext := range extIDs {
		if u := e.arena.UserByExtID(ext); u != nil {
			users = append(users, u)
		}
	}
	return users
}

func scoresOf(users []*domain.User, bucket domain.RatingBucket) []int {
	scores := make([]int, len(users))
	for i, u := range users {
		scores[i] = u.Rating(bucket).Score
	}
	return scores
}

// applySettlement writes the new scores back onto each user, publishes the
// result, records the match's opposing roster for recent-opponent
// tracking, and enqueues a durable update.
func (e *Engine) applySettlement(users []*domain.User, newScores []int, bucket domain.RatingBucket, won bool, opponents []*domain.User) {
	opponentIDs := make([]domain.UserID, len(opponents))
	for i, o := range opponents {
		opponentIDs[i] = o.ID
	}

	for i, u := range users {
		entry := u.Rating(bucket)
		entry.Score = newScores[i]
		if won {
			entry.Wins++
		} else {
			entry.Losses++
		}
		u.RecordOpponents(opponentIDs)

		e.publish(memberTopic(u.ExtID, "rating_update"), map[string]any{
			"bucket": bucket,
			"score":  entry.Score,
			"won":    won,
		})

		if e.sink != nil {
			e.sink.Enqueue(persistence.UserRecord{
				ExtID: u.ExtID,
				Name:  u.Name,
				Honor: u.Honor,
				NG1v1: *u.Rating(domain.BucketNG1v1),
				NG5v5: *u.Rating(domain.BucketNG5v5),
				RK1v1: *u.Rating(domain.BucketRK1v1),
				RK5v5: *u.Rating(domain.BucketRK5v5),
				At:    e.clock.Now(),
			})
		}
	}
}
