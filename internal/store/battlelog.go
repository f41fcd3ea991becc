package store

import (
	"database/sql"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"fight-club/internal/battle/sim"
)

const (
	maxBattlesPerSec  = 50
	batchFlushSize    = 16
	batchFlushInterval = 200 * time.Millisecond
)

// storedBattle is one queued write.
type storedBattle struct {
	id        string
	result    *sim.BattleResult
	createdAt time.Time
}

// battleLogWriter asynchronously persists completed battles, matching
// write throughput to what sqlite's single writer can sustain rather than
// blocking the battle-completing goroutine on disk I/O.
type battleLogWriter struct {
	db      *sql.DB
	queue   chan storedBattle
	limiter *rate.Limiter

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

func newBattleLogWriter(db *sql.DB, bufferSize int) *battleLogWriter {
	return &battleLogWriter{
		db:       db,
		queue:    make(chan storedBattle, bufferSize),
		limiter:  rate.NewLimiter(maxBattlesPerSec, maxBattlesPerSec/5+1),
		stopChan: make(chan struct{}),
	}
}

func (w *battleLogWriter) start() {
	w.wg.Add(1)
	go w.writeLoop()
}

func (w *battleLogWriter) stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.wg.Wait()
	})
}

// enqueue submits a battle for persistence. Returns false if the queue is
// full or the global rate limit is exceeded, in which case the battle
// result is still returned to its caller over the API, just not durably
// stored.
func (w *battleLogWriter) enqueue(b storedBattle) bool {
	if !w.limiter.Allow() {
		atomic.AddUint64(&w.droppedCount, 1)
		return false
	}
	select {
	case w.queue <- b:
		atomic.AddUint64(&w.totalCount, 1)
		return true
	default:
		atomic.AddUint64(&w.droppedCount, 1)
		return false
	}
}

func (w *battleLogWriter) writeLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(batchFlushInterval)
	defer ticker.Stop()

	batch := make([]storedBattle, 0, batchFlushSize)
	for {
		select {
		case <-w.stopChan:
			batch = w.drain(batch[:0])
			w.flush(batch)
			return
		case b := <-w.queue:
			batch = append(batch, b)
			if len(batch) >= batchFlushSize {
				w.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			batch = w.drain(batch[:0])
			w.flush(batch)
			batch = batch[:0]
		}
	}
}

// drain opportunistically collects whatever is already queued without
// blocking, for the periodic and shutdown flushes.
func (w *battleLogWriter) drain(batch []storedBattle) []storedBattle {
	for len(batch) < batchFlushSize {
		select {
		case b := <-w.queue:
			batch = append(batch, b)
		default:
			return batch
		}
	}
	return batch
}

func (w *battleLogWriter) flush(batch []storedBattle) {
	if len(batch) == 0 {
		return
	}

	tx, err := w.db.Begin()
	if err != nil {
		return
	}
	stmt, err := tx.Prepare(`
		INSERT INTO battles (id, seed, winner, total_rounds, duration_ms, events_json, final_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`)
	if err != nil {
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, b := range batch {
		eventsJSON, err := json.Marshal(b.result.Events)
		if err != nil {
			continue
		}
		finalJSON, err := json.Marshal(b.result.FinalState)
		if err != nil {
			continue
		}
		stmt.Exec(b.id, b.result.Metadata.Seed, b.result.Winner, b.result.Metadata.TotalRounds,
			b.result.Metadata.DurationMs, string(eventsJSON), string(finalJSON), b.createdAt)
	}
	tx.Commit()
}
