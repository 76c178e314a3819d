package domain

// RatingEntry is one of a user's four {score, wins, losses} rating buckets.
type RatingEntry struct {
	Score  int
	Wins   int
	Losses int
}

// User is a player identity owned exclusively by the engine's user arena.
// Rooms, groups and games reference users only by UserID.
type User struct {
	ID      UserID
	ExtID   string // external/bus identity, e.g. steam/device id
	Name    string
	Hero    string
	BanHero string
	Honor   int

	Ratings map[RatingBucket]*RatingEntry

	RID    RoomID // 0 = not in a room
	GID    GroupID
	GameID GameID

	Online        bool
	StartPrestart bool
	PrestartGet   bool

	// RecentOpponents is a ring of recent matches' opposing rosters,
	// supplementing the original's `recent_users`. Index 0 is the most
	// recent match's opponents.
	RecentOpponents [][]UserID
	// Blocklist holds users this player will not be grouped with.
	Blocklist []UserID
}

// NewUser returns a freshly seeded user record with default ratings.
func NewUser(id UserID, extID string, seedScore int) *User {
	return &User{
		ID:    id,
		ExtID: extID,
		Name:  extID,
		Ratings: map[RatingBucket]*RatingEntry{
			BucketNG1v1: {Score: seedScore},
			BucketNG5v5: {Score: seedScore},
			BucketRK1v1: {Score: seedScore},
			BucketRK5v5: {Score: seedScore},
		},
	}
}

// Rating returns the entry for a bucket, seeding a zero-value one if the
// user somehow lacks it (defensive — NewUser always populates all four).
func (u *User) Rating(bucket RatingBucket) *RatingEntry {
	if u.Ratings == nil {
		u.Ratings = map[RatingBucket]*RatingEntry{}
	}
	entry, ok := u.Ratings[bucket]
	if !ok {
		entry = &RatingEntry{}
		u.Ratings[bucket] = entry
	}
	return entry
}

// IsBlocked reports whether the user has blocked the given other user, or
// vice versa is not considered here — blocking is one-directional, checked
// from the perspective of the room being admitted.
func (u *User) IsBlocked(other UserID) bool {
	for _, b := range u.Blocklist {
		if b == other {
			return true
		}
	}
	return false
}

// Block adds other to the user's blocklist, a no-op if already present.
func (u *User) Block(other UserID) {
	if u.IsBlocked(other) {
		return
	}
	u.Blocklist = append(u.Blocklist, other)
}

// Unblock removes other from the user's blocklist, a no-op if absent.
func (u *User) Unblock(other UserID) {
	for i, b := range u.Blocklist {
		if b == other {
			u.Blocklist = append(u.Blocklist[:i], u.Blocklist[i+1:]...)
			return
		}
	}
}

// RecordOpponents pushes a newly finished match's opposing roster onto the
// front of RecentOpponents, capping history at maxRecentOpponents entries.
const maxRecentOpponents = 5

func (u *User) RecordOpponents(opponents []UserID) {
	u.RecentOpponents = append([][]UserID{append([]UserID(nil), opponents...)}, u.RecentOpponents...)
	if len(u.RecentOpponents) > maxRecentOpponents {
		u.RecentOpponents = u.RecentOpponents[:maxRecentOpponents]
	}
}
