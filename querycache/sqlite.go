package querycache

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTier is the durable tier, the disk-backed analog of the browser's
// local storage. Entries are stored as BLOBs keyed by the namespaced key.
type sqliteTier struct {
	db           *sql.DB
	ctx          context.Context
	cancel       context.CancelFunc
	waitGroup    sync.WaitGroup
	once         sync.Once
	queryTimeout time.Duration
	expiryCheck  time.Duration
}

var _ Tier = (*sqliteTier)(nil)

// NewSQLiteTier returns a persistent Tier backed by SQLite.
// If dbPath is empty or ":memory:", an in-memory database is used.
func NewSQLiteTier(ctx context.Context, dbPath string, opts ...Option) (Tier, error) {
	cfg := applyOptions(opts)
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// WAL for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS query_cache (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_query_cache_expires_at ON query_cache(expires_at)`); err != nil {
		db.Close()
		return nil, err
	}

	childCtx, cancel := context.WithCancel(ctx)
	t := &sqliteTier{
		db:           db,
		ctx:          childCtx,
		cancel:       cancel,
		queryTimeout: cfg.queryTimeout,
		expiryCheck:  cfg.expiryCheck,
	}

	t.waitGroup.Add(1)
	go t.run()

	return t, nil
}

func (t *sqliteTier) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, t.queryTimeout)
}

func (t *sqliteTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	now := time.Now().UnixNano()
	var data []byte
	var expiresAt int64
	err := t.db.QueryRowContext(qctx,
		`SELECT value, expires_at FROM query_cache WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if expiresAt < now {
		// Lazily delete the expired row.
		_, _ = t.db.ExecContext(qctx, `DELETE FROM query_cache WHERE key = ?`, key)
		return nil, false, nil
	}

	return data, true, nil
}

func (t *sqliteTier) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	expiresAt := time.Now().Add(ttl).UnixNano()
	_, err := t.db.ExecContext(qctx,
		`INSERT INTO query_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, data, expiresAt,
	)
	return err
}

func (t *sqliteTier) Delete(ctx context.Context, key string) error {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	_, err := t.db.ExecContext(qctx, `DELETE FROM query_cache WHERE key = ?`, key)
	return err
}

func (t *sqliteTier) Clear(ctx context.Context, prefix string) error {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	if prefix == "" {
		_, err := t.db.ExecContext(qctx, `DELETE FROM query_cache`)
		return err
	}
	_, err := t.db.ExecContext(qctx,
		`DELETE FROM query_cache WHERE key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	return err
}

func (t *sqliteTier) Close() error {
	var dbErr error
	t.once.Do(func() {
		t.cancel()
		t.waitGroup.Wait()
		dbErr = t.db.Close()
	})
	return dbErr
}

func (t *sqliteTier) run() {
	defer t.waitGroup.Done()
	ticker := time.NewTicker(t.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().UnixNano()
			_, _ = t.db.Exec(`DELETE FROM query_cache WHERE expires_at < ?`, now)
		}
	}
}

// escapeLike escapes the LIKE wildcards in a literal prefix. Canonical keys
// can contain % and _ inside descriptor values.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
