package engine

import "github.com/sonicrain/matchd/internal/domain"

// roomMemberView and roomUpdateView are the JSON shapes published on
// room/{r}/res/update.

type roomMemberView struct {
	ExtID string `json:"ext_id"`
	Name  string `json:"name"`
}

type roomUpdateView struct {
	Master   string           `json:"master"`
	Mode     domain.Mode      `json:"mode"`
	Ready    domain.ReadyState `json:"ready"`
	AvgNG1v1 int              `json:"avg_ng1v1"`
	AvgRK1v1 int              `json:"avg_rk1v1"`
	AvgNG5v5 int              `json:"avg_ng5v5"`
	AvgRK5v5 int              `json:"avg_rk5v5"`
	AvgHonor int              `json:"avg_honor"`
	Members  []roomMemberView `json:"members"`
	// LastMaster names the previous master once the room's master has
	// changed at least once, so clients can show a transfer notice. It is
	// not limited to the update in which the change happened: every later
	// update of the room carries it too.
	LastMaster string `json:"last_master,omitempty"`
}

func roomView(a *domain.Arena, r *domain.Room) roomUpdateView {
	v := roomUpdateView{
		Master:   a.User(r.Master).ExtID,
		Mode:     r.Mode,
		Ready:    r.Ready,
		AvgNG1v1: r.AvgNG1v1,
		AvgRK1v1: r.AvgRK1v1,
		AvgNG5v5: r.AvgNG5v5,
		AvgRK5v5: r.AvgRK5v5,
		AvgHonor: r.AvgHonor,
	}
	for _, uid := range r.Users {
		if u := a.User(uid); u != nil {
			v.Members = append(v.Members, roomMemberView{ExtID: u.ExtID, Name: u.Name})
		}
	}
	if r.LastMaster != 0 {
		if lm := a.User(r.LastMaster); lm != nil {
			v.LastMaster = lm.ExtID
		}
	}
	return v
}

type loginView struct {
	NG1v1 domain.RatingEntry `json:"ng1v1"`
	NG5v5 domain.RatingEntry `json:"ng5v5"`
	RK1v1 domain.RatingEntry `json:"rk1v1"`
	RK5v5 domain.RatingEntry `json:"rk5v5"`
	Honor int                `json:"honor"`
}

func loginViewFor(u *domain.User) loginView {
	return loginView{
		NG1v1: *u.Rating(domain.BucketNG1v1),
		NG5v5: *u.Rating(domain.BucketNG5v5),
		RK1v1: *u.Rating(domain.BucketRK1v1),
		RK5v5: *u.Rating(domain.BucketRK5v5),
		Honor: u.Honor,
	}
}
