// Package store is the persistence worker: it owns the SQL connection,
// loads the on-disk world at startup, and drains a queue of block/sign/
// light mutations to SQLite every five seconds.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/twetzel59/craftd/pkg/world"
)

const drainInterval = 5 * time.Second

// Command is a pending durable mutation. The concrete type is one of
// SetBlock, SetSign, or SetLight.
type Command interface{ isCommand() }

// SetBlock durably records a block placement.
type SetBlock struct {
	XYZ world.Pos
	PQ  world.ChunkKey
	W   int8
}

// SetSign durably records a sign upsert or, if Text is empty, a deletion of
// that one face.
type SetSign struct {
	XYZ  world.Pos
	Face uint8
	Text string
}

// SetLight durably records a light-level change.
type SetLight struct {
	XYZ world.Pos
	PQ  world.ChunkKey
	W   int8
}

func (SetBlock) isCommand() {}
func (SetSign) isCommand()  {}
func (SetLight) isCommand() {}

// Worker owns the SQLite connection exclusively; it is the only goroutine
// that touches db after Open returns.
type Worker struct {
	db       *sqlx.DB
	log      *zap.SugaredLogger
	ch       chan Command
	interval time.Duration
}

// Open creates or opens the SQLite database at path, applies the schema
// DDL idempotently, and returns a Worker ready to Load and then Run.
func Open(path string, log *zap.SugaredLogger) (*Worker, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// A single worker goroutine is the sole user of this handle; pinning
	// the pool to one connection also makes an ":memory:" DSN behave
	// correctly (SQLite's in-memory databases are per-connection).
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Worker{
		db:       db,
		log:      log,
		ch:       make(chan Command, 4096),
		interval: drainInterval,
	}, nil
}

// Close releases the underlying SQL connection.
func (w *Worker) Close() error { return w.db.Close() }

// Load populates dst with every block, sign, and light persisted so far.
// Block rows are applied with PutBlock rather than SetBlock: each row,
// including overlap copies, was already durably recorded by handleBlock at
// the time of the edit, so Load only needs to restore them verbatim rather
// than recompute the overlap rule a second time.
func (w *Worker) Load(dst *world.World) error {
	var blocks []blockRow
	if err := w.db.Select(&blocks, queryLoadBlocks); err != nil {
		return fmt.Errorf("store: load blocks: %w", err)
	}
	for _, r := range blocks {
		dst.PutBlock(world.Pos{X: r.X, Y: r.Y, Z: r.Z}, world.ChunkKey{P: r.P, Q: r.Q}, r.W)
	}

	var signs []signRow
	if err := w.db.Select(&signs, queryLoadSigns); err != nil {
		return fmt.Errorf("store: load signs: %w", err)
	}
	for _, r := range signs {
		dst.SetSign(world.Pos{X: r.X, Y: r.Y, Z: r.Z}, world.ChunkKey{P: r.P, Q: r.Q}, r.Face, r.Text)
	}

	var lights []lightRow
	if err := w.db.Select(&lights, queryLoadLights); err != nil {
		return fmt.Errorf("store: load lights: %w", err)
	}
	for _, r := range lights {
		dst.SetLight(world.Pos{X: r.X, Y: r.Y, Z: r.Z}, world.ChunkKey{P: r.P, Q: r.Q}, r.W)
	}
	return nil
}

// Enqueue queues a command for the next drain. It never blocks the caller
// under normal load; the channel is sized generously and a full channel
// indicates the worker has fallen far behind, at which point applying
// back-pressure to the event hub is preferable to silently dropping writes.
func (w *Worker) Enqueue(cmd Command) {
	w.ch <- cmd
}

// Drain forces an immediate, synchronous flush of the pending queue,
// bypassing the ticker. Useful for a graceful-shutdown flush and for tests
// that don't want to wait out the real drain interval.
func (w *Worker) Drain() error {
	return w.drain()
}

// Run drains w's command queue every five seconds until ctx is cancelled. A
// SQL error is treated as fatal: it is returned immediately and the caller
// is expected to terminate the process.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.drain(); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) drain() error {
	applied := 0
drainLoop:
	for {
		select {
		case cmd := <-w.ch:
			if err := w.apply(cmd); err != nil {
				return err
			}
			applied++
		default:
			break drainLoop
		}
	}
	if applied > 0 {
		w.log.Info("Saved the world.")
	}
	return nil
}

func (w *Worker) apply(cmd Command) error {
	switch c := cmd.(type) {
	case SetBlock:
		if _, err := w.db.Exec(querySetBlock, c.PQ.P, c.PQ.Q, c.XYZ.X, c.XYZ.Y, c.XYZ.Z, c.W); err != nil {
			return fmt.Errorf("store: set block: %w", err)
		}
		if c.W == 0 {
			if _, err := w.db.Exec(queryDeleteSigns, c.XYZ.X, c.XYZ.Y, c.XYZ.Z); err != nil {
				return fmt.Errorf("store: delete signs on air: %w", err)
			}
		}
		return nil
	case SetSign:
		pq := world.ChunkOf(c.XYZ.X, c.XYZ.Z)
		if c.Text == "" {
			if _, err := w.db.Exec(queryDeleteIndividualSign, c.XYZ.X, c.XYZ.Y, c.XYZ.Z, c.Face); err != nil {
				return fmt.Errorf("store: delete sign: %w", err)
			}
			return nil
		}
		if _, err := w.db.Exec(querySetSign, pq.P, pq.Q, c.XYZ.X, c.XYZ.Y, c.XYZ.Z, c.Face, c.Text); err != nil {
			return fmt.Errorf("store: set sign: %w", err)
		}
		return nil
	case SetLight:
		if _, err := w.db.Exec(querySetLight, c.PQ.P, c.PQ.Q, c.XYZ.X, c.XYZ.Y, c.XYZ.Z, c.W); err != nil {
			return fmt.Errorf("store: set light: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("store: unknown command %T", cmd)
	}
}
