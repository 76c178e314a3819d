package engine

import "github.com/sonicrain/matchd/internal/domain"

// Kind is a command's opcode.
type Kind string

const (
	Login        Kind = "login"
	Logout       Kind = "logout"
	Create       Kind = "create"
	Close        Kind = "close"
	Join         Kind = "join"
	Leave        Kind = "leave"
	Invite       Kind = "invite"
	ChooseNGHero Kind = "choose_ng_hero"
	StartQueue   Kind = "start_queue"
	CancelQueue  Kind = "cancel_queue"
	PreStart     Kind = "prestart"
	PreStartGet  Kind = "prestart_get"
	StartGame    Kind = "start_game"
	GameOver     Kind = "game_over"
	GameClose    Kind = "game_close"
	Status       Kind = "status"
	Reconnect    Kind = "reconnect"
	Reset        Kind = "reset"
	AdminSnapshot Kind = "admin_snapshot"
	Block        Kind = "block"
	Unblock      Kind = "unblock"
)

// Command is one decoded inbound message, already resolved from its bus
// envelope by the (out-of-core) dispatch shell. Fields are a superset; each
// Kind reads only the ones it needs.
type Command struct {
	Kind Kind

	UserExtID   string
	TargetExtID string // Invite, Join target room's master; Block/Unblock target user
	Mode        domain.Mode
	Hero        string
	Accept      bool
	GameID      domain.GameID
	WinnerExt   []string // GameOver: winning side's ext ids
	LoserExt    []string // GameOver: losing side's ext ids

	// Reply carries AdminSnapshot's result back out of the engine goroutine.
	// Never populated by the bus dispatch shell — only by Engine.Stats.
	Reply chan Snapshot
}
