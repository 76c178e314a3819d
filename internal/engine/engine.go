// Package engine implements the single-threaded event engine that owns all
// matchmaking state: one goroutine draining a command channel and two
// tickers, mutating a domain.Arena, and emitting outbound bus messages and
// persistence events. Nothing outside this goroutine ever touches the
// arena, eliminating the locking a shared reference-counted object graph
// would otherwise need.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/status"

	"github.com/sonicrain/matchd/internal/bus"
	"github.com/sonicrain/matchd/internal/domain"
	"github.com/sonicrain/matchd/internal/lifecycle"
	"github.com/sonicrain/matchd/internal/metrics"
	"github.com/sonicrain/matchd/internal/persistence"
	"github.com/sonicrain/matchd/internal/rating"
)

// errQueueFull is returned by Submit when the command queue is saturated.
var errQueueFull = errors.New("engine: command queue full")

// Launcher starts the dedicated game-server process for a ready match.
// Defined locally (rather than importing internal/launcher) to keep the
// dependency direction pointing outward from engine, matching the Host
// pattern used for lifecycle.
type Launcher interface {
	Start(gameID domain.GameID, port uint16) error
}

// Engine owns the arena and every queue of the matchmaking lifecycle.
type Engine struct {
	arena *domain.Arena
	elo   rating.Elo
	bus   bus.Bus
	sink  *persistence.Sink
	log   *zap.Logger
	clock clock

	defaultHero string
	heroPool    []string
	launcher    Launcher

	cmdCh chan Command

	queueRoom []domain.RoomID
	queueSet  map[domain.RoomID]struct{}

	readyGroups []domain.GroupID
	readySet    map[domain.GroupID]struct{}

	preStartGames []domain.GameID
	preStartSet   map[domain.GameID]struct{}

	gamingGames map[domain.GameID]*lifecycle.Controller

	nextGamePort uint16
}

// clock is overridden in tests to avoid depending on wall-clock ticks.
type clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Option configures an Engine at construction.
type Option func(*Engine)

// WithDefaultHero sets the hero assigned to users who miss a ban/pick
// deadline.
func WithDefaultHero(hero string) Option {
	return func(e *Engine) { e.defaultHero = hero }
}

// WithHeroPool sets the roster ARAM rolls from.
func WithHeroPool(pool []string) Option {
	return func(e *Engine) { e.heroPool = pool }
}

// WithLauncher sets the dedicated-server launcher (defaults to a no-op if
// never set — Engine still runs end-to-end without one).
func WithLauncher(l Launcher) Option {
	return func(e *Engine) { e.launcher = l }
}

// New builds an Engine with an empty arena.
func New(b bus.Bus, sink *persistence.Sink, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		arena:         domain.NewArena(),
		elo:           rating.New(),
		bus:           b,
		sink:          sink,
		log:           log,
		clock:         realClock{},
		defaultHero:   "default_hero",
		cmdCh:         make(chan Command, CommandQueueDepth),
		queueSet:      make(map[domain.RoomID]struct{}),
		readySet:      make(map[domain.GroupID]struct{}),
		preStartSet:   make(map[domain.GameID]struct{}),
		gamingGames:   make(map[domain.GameID]*lifecycle.Controller),
		nextGamePort:  GamePortLow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit enqueues a command for processing. Non-blocking: a full queue
// returns an error immediately rather than stalling the caller, matching
// the bus's at-least-once delivery assumption — the sender is expected to
// redeliver.
func (e *Engine) Submit(cmd Command) error {
	select {
	case e.cmdCh <- cmd:
		return nil
	default:
		e.log.Warn("command queue full, dropping", zap.String("kind", string(cmd.Kind)))
		metrics.CommandQueueDropped.Inc()
		return errQueueFull
	}
}

// Run is the engine's single goroutine: it drains the command channel and
// two tickers until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	fast := time.NewTicker(FastTick)
	slow := time.NewTicker(SlowTick)
	defer fast.Stop()
	defer slow.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-e.cmdCh:
			e.handle(cmd)
		case <-fast.C:
			e.matcherSweep()
			e.prestartSweep()
			e.tickControllers(FastTick)
		case <-slow.C:
			e.resendPrestartReminders()
		}
	}
}

func (e *Engine) handle(cmd Command) {
	metrics.CommandsTotal.WithLabelValues(string(cmd.Kind)).Inc()
	switch cmd.Kind {
	case Login:
		e.handleLogin(cmd)
	case Logout:
		e.handleLogout(cmd)
	case Create:
		e.handleCreate(cmd)
	case Close:
		e.handleClose(cmd)
	case Join:
		e.handleJoin(cmd)
	case Leave:
		e.handleLeave(cmd)
	case Invite:
		e.handleInvite(cmd)
	case ChooseNGHero:
		e.handleChooseNGHero(cmd)
	case StartQueue:
		e.handleStartQueue(cmd)
	case CancelQueue:
		e.handleCancelQueue(cmd)
	case PreStart:
		e.handlePreStart(cmd)
	case PreStartGet:
		e.handlePreStartGet(cmd)
	case StartGame:
		e.handleStartGame(cmd)
	case GameOver:
		e.handleGameOver(cmd)
	case GameClose:
		e.handleGameClose(cmd)
	case Status:
		e.handleStatus(cmd)
	case Reconnect:
		e.handleReconnect(cmd)
	case Reset:
		e.handleReset(cmd)
	case AdminSnapshot:
		e.handleAdminSnapshot(cmd)
	case Block:
		e.handleBlock(cmd)
	case Unblock:
		e.handleUnblock(cmd)
	default:
		e.log.Error("unknown command kind", zap.String("kind", string(cmd.Kind)))
	}
}

// --- outbound helpers ---

func (e *Engine) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		e.log.Error("marshal outbound payload failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	if err := e.bus.Publish(context.Background(), topic, payload); err != nil {
		e.log.Warn("publish failed, dropping", zap.String("topic", topic), zap.Error(err))
		metrics.BusPublishFailures.WithLabelValues("member_room_game").Inc()
	}
}

func (e *Engine) ok(extID, suffix string) { e.publish(memberTopic(extID, suffix), map[string]string{"status": "ok"}) }

// fail decodes a classified validation error (built with status.Error at
// the call site) back into the ok/fail envelope, the way an RPC handler
// unwraps a status before replying to its caller.
func (e *Engine) fail(extID, suffix string, err error) {
	st := status.Convert(err)
	e.publish(memberTopic(extID, suffix), map[string]string{
		"status": "fail",
		"code":   st.Code().String(),
		"reason": st.Message(),
	})
}

func (e *Engine) broadcastRoomUpdate(r *domain.Room) {
	master := e.arena.User(r.Master)
	if master == nil {
		return
	}
	e.publish(roomTopic(master.ExtID, "update"), roomView(e.arena, r))
}

// --- lifecycle.Host implementation ---

func (e *Engine) User(id domain.UserID) *domain.User { return e.arena.User(id) }

func (e *Engine) PublishGame(gameID domain.GameID, suffix string, payload []byte) {
	if err := e.bus.Publish(context.Background(), gameTopic(gameID, suffix), payload); err != nil {
		e.log.Warn("publish game message failed", zap.Uint64("game_id", uint64(gameID)), zap.Error(err))
		metrics.BusPublishFailures.WithLabelValues("game").Inc()
	}
}

func (e *Engine) DefaultHero() string { return e.defaultHero }

func (e *Engine) PersistHeroSnapshot(gameID domain.GameID, picks []lifecycle.HeroPick) {
	if e.sink == nil {
		return
	}
	now := e.clock.Now()
	for _, p := range picks {
		u := e.arena.User(p.UserID)
		if u == nil {
			continue
		}
		e.sink.EnqueueSnapshot(persistence.HeroSnapshot{
			GameID:  uint64(gameID),
			Seat:    p.Seat,
			ExtID:   u.ExtID,
			Hero:    p.Hero,
			BanHero: p.BanHero,
			At:      now,
		})
	}
}
