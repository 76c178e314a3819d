// Package persistence implements the durable side of user state: login
// upsert and periodic rating/honor writebacks. Writes are never issued
// inline from the engine goroutine — they're queued and flushed by a
// ticker-driven batcher, so a slow database never stalls a matchmaking
// tick.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/sonicrain/matchd/internal/domain"
	"github.com/sonicrain/matchd/internal/metrics"
)

// FlushInterval is how often queued writes are batched to the database.
const FlushInterval = time.Second

// UserRecord is the durable snapshot of one user, written on Login and on
// every settlement that changes a rating or honor value.
type UserRecord struct {
	ExtID    string
	Name     string
	Honor    int
	NG1v1    domain.RatingEntry
	NG5v5    domain.RatingEntry
	RK1v1    domain.RatingEntry
	RK5v5    domain.RatingEntry
	At       time.Time
}

// HeroSnapshot is one seat's settled ban/pick for a match, written once a
// controller leaves ReadyToStart.
type HeroSnapshot struct {
	GameID  uint64
	Seat    int
	ExtID   string
	Hero    string
	BanHero string
	At      time.Time
}

// Sink batches UserRecord and HeroSnapshot writes and flushes them to MySQL
// on a ticker.
type Sink struct {
	db  *sql.DB
	log *zap.Logger

	queue     chan UserRecord
	snapshots chan HeroSnapshot
	done      chan struct{}
}

// Open connects to MySQL using the given DSN (user:pass@tcp(host:port)/db)
// and starts the background flush loop.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Sink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("persistence: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("persistence: ping: %w", err)
	}

	s := &Sink{
		db:        db,
		log:       log,
		queue:     make(chan UserRecord, 1024),
		snapshots: make(chan HeroSnapshot, 1024),
		done:      make(chan struct{}),
	}
	go s.run(ctx)
	return s, nil
}

// Enqueue submits a record for the next flush. Non-blocking: a full queue
// drops the oldest-pending writeback rather than stalling the caller,
// since a later flush will carry the same user's latest values anyway.
func (s *Sink) Enqueue(r UserRecord) {
	select {
	case s.queue <- r:
	default:
		s.log.Warn("persistence queue full, dropping oldest pending write")
		select {
		case <-s.queue:
		default:
		}
		select {
		case s.queue <- r:
		default:
		}
	}
	metrics.PersistenceQueueDepth.Set(float64(len(s.queue) + len(s.snapshots)))
}

// EnqueueSnapshot submits a hero snapshot for the next flush. Unlike user
// records, snapshots are append-only rows — no deduplication on flush.
func (s *Sink) EnqueueSnapshot(snap HeroSnapshot) {
	select {
	case s.snapshots <- snap:
	default:
		s.log.Warn("persistence snapshot queue full, dropping", zap.Uint64("game_id", snap.GameID))
	}
	metrics.PersistenceQueueDepth.Set(float64(len(s.queue) + len(s.snapshots)))
}

func (s *Sink) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	var batch []UserRecord
	var snapBatch []HeroSnapshot
	for {
		select {
		case <-ctx.Done():
			s.flush(context.Background(), batch)
			s.flushSnapshots(context.Background(), snapBatch)
			return
		case r := <-s.queue:
			batch = append(batch, r)
		case snap := <-s.snapshots:
			snapBatch = append(snapBatch, snap)
		case <-ticker.C:
			if len(batch) > 0 {
				s.flush(ctx, batch)
				batch = nil
			}
			if len(snapBatch) > 0 {
				s.flushSnapshots(ctx, snapBatch)
				snapBatch = nil
			}
			metrics.PersistenceQueueDepth.Set(0)
		}
	}
}

// flushSnapshots inserts every queued hero snapshot as its own row.
func (s *Sink) flushSnapshots(ctx context.Context, batch []HeroSnapshot) {
	if len(batch) == 0 {
		return
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log.Error("persistence: begin snapshot tx failed", zap.Error(err))
		return
	}
	defer tx.Rollback()

	for _, snap := range batch {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO match_hero_snapshot (game_id, seat, ext_id, hero, ban_hero, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			snap.GameID, snap.Seat, snap.ExtID, snap.Hero, snap.BanHero, snap.At)
		if err != nil {
			s.log.Error("persistence: insert hero snapshot failed",
				zap.Uint64("game_id", snap.GameID), zap.Int("seat", snap.Seat), zap.Error(err))
		}
	}
	if err := tx.Commit(); err != nil {
		s.log.Error("persistence: snapshot commit failed", zap.Error(err))
	}
}

// flush upserts every queued record, deduplicating on ExtID (last write in
// the batch wins) so a hot user mid-session only costs one row write per
// tick.
func (s *Sink) flush(ctx context.Context, batch []UserRecord) {
	if len(batch) == 0 {
		return
	}
	latest := dedupeLatest(batch)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log.Error("persistence: begin tx failed", zap.Error(err))
		return
	}
	defer tx.Rollback()

	for _, r := range latest {
		if err := upsertUser(ctx, tx, r); err != nil {
			s.log.Error("persistence: upsert user failed", zap.String("ext_id", r.ExtID), zap.Error(err))
			return
		}
	}
	if err := tx.Commit(); err != nil {
		s.log.Error("persistence: commit failed", zap.Error(err))
	}
}

// dedupeLatest collapses a batch to one record per ExtID, keeping whichever
// occurrence appears last (the most recently enqueued).
func dedupeLatest(batch []UserRecord) map[string]UserRecord {
	latest := make(map[string]UserRecord, len(batch))
	for _, r := range batch {
		latest[r.ExtID] = r
	}
	return latest
}

func upsertUser(ctx context.Context, tx *sql.Tx, r UserRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user (ext_id, name, honor, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), honor = VALUES(honor), updated_at = VALUES(updated_at)`,
		r.ExtID, r.Name, r.Honor, r.At)
	if err != nil {
		return fmt.Errorf("user: %w", err)
	}

	buckets := []struct {
		table string
		entry domain.RatingEntry
	}{
		{"user_ng1v1", r.NG1v1},
		{"user_ng5v5", r.NG5v5},
		{"user_rk1v1", r.RK1v1},
		{"user_rk5v5", r.RK5v5},
	}
	for _, b := range buckets {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (ext_id, score, wins, losses)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE score = VALUES(score), wins = VALUES(wins), losses = VALUES(losses)`, b.table),
			r.ExtID, b.entry.Score, b.entry.Wins, b.entry.Losses)
		if err != nil {
			return fmt.Errorf("%s: %w", b.table, err)
		}
	}
	return nil
}

// Close waits for the flush loop to exit and then closes the database
// handle. Close does not stop the loop itself: the loop exits once the
// context given to Open is cancelled, flushing the records it has already
// taken off the queues; records still buffered in the queue channels at
// that moment are not written.
func (s *Sink) Close(ctx context.Context) error {
	<-s.done
	return s.db.Close()
}
