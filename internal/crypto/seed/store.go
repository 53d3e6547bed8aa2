package seed

import (
	"context"
	"database/sql"
	"errors"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS session_seeds (
	session_id  TEXT PRIMARY KEY,
	seed        INTEGER NOT NULL,
	resolved_at INTEGER NOT NULL
)`

// Persistent seed cache shared across process restarts
type Store struct {
	db *sql.DB
}

// Opens (creating if needed) a seed database. ":memory:" keeps it in process.
func OpenStore(path string) (store *Store, err error) {
	if path != ":memory:" {
		err = os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			err = fmt.Errorf("unable to create seed store directory: %w", err)
			return
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		err = fmt.Errorf("unable to open seed store: %w", err)
		return
	}
	// Single writer, and required for in-memory databases to share one connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec(schema)
	if err != nil {
		db.Close()
		err = fmt.Errorf("unable to initialize seed store: %w", err)
		return
	}
	store = &Store{db: db}
	return
}

// Returns the stored seed, found is false when the session has no entry
func (s *Store) Get(ctx context.Context, sessionID string) (seed uint32, found bool, err error) {
	var value int64
	err = s.db.QueryRowContext(ctx,
		`SELECT seed FROM session_seeds WHERE session_id = ?`, sessionID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return
	}
	if err != nil {
		err = fmt.Errorf("failed to query seed store: %w", err)
		return
	}
	seed = uint32(value)
	found = true
	return
}

func (s *Store) Put(ctx context.Context, sessionID string, seed uint32) (err error) {
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_seeds (session_id, seed, resolved_at) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET seed = excluded.seed, resolved_at = excluded.resolved_at`,
		sessionID, int64(seed), time.Now().Unix())
	if err != nil {
		err = fmt.Errorf("failed to write seed store: %w", err)
	}
	return
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Consults the store before the wrapped resolver and saves what it resolves.
// Store failures are logged and fall through to the resolver.
type CachingResolver struct {
	Store *Store
	Next  Resolver
}

func (r *CachingResolver) Resolve(ctx context.Context, sessionID string) (seed uint32, err error) {
	seed, found, err := r.Store.Get(ctx, sessionID)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "%v\n", err)
	} else if found {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Loaded seed for session %s from store\n", sessionID)
		return
	}

	seed, err = r.Next.Resolve(ctx, sessionID)
	if err != nil {
		return
	}

	storeErr := r.Store.Put(ctx, sessionID, seed)
	if storeErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "%v\n", storeErr)
	}
	return
}
