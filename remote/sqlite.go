package remote

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

// SQLite stores objects in a SQLite table, so they survive process restarts
// and can be shared by processes on the same host.
type SQLite struct {
	db        *sql.DB
	cfg       config
	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	once      sync.Once
}

// NewSQLite opens (or creates) the store at dbPath. An empty path or
// ":memory:" uses a private in-memory database.
func NewSQLite(ctx context.Context, dbPath string, opts ...Option) (*SQLite, error) {
	memory := dbPath == "" || dbPath == ":memory:"
	if memory {
		dbPath = ":memory:"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite open")
	}
	if memory {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`CREATE TABLE IF NOT EXISTS cache_objects (
			obj_type TEXT NOT NULL,
			obj_key TEXT NOT NULL,
			body BLOB NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (obj_type, obj_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_objects_expires_at ON cache_objects(expires_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "sqlite init")
		}
	}

	cfg := applyOptions(opts)
	cfg.logger = cfg.logger.WithPrefix("[sqlite]")
	childCtx, cancel := context.WithCancel(ctx)
	s := &SQLite{
		db:     db,
		cfg:    cfg,
		ctx:    childCtx,
		cancel: cancel,
	}
	if s.cfg.purgeInterval > 0 {
		s.waitGroup.Add(1)
		go s.run()
	}
	return s, nil
}

func (s *SQLite) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.cfg.queryTimeout)
}

// Put upserts value and resets its remote TTL.
func (s *SQLite) Put(ctx context.Context, typeTag, key string, value []byte) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	expiresAt := s.cfg.now().Add(s.cfg.ttl).UnixNano()
	_, err := s.db.ExecContext(qctx,
		`INSERT INTO cache_objects (obj_type, obj_key, body, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(obj_type, obj_key) DO UPDATE SET body = excluded.body, expires_at = excluded.expires_at`,
		typeTag, key, value, expiresAt,
	)
	if err != nil {
		return errors.Wrapf(err, "sqlite put %s/%s", typeTag, key)
	}
	return nil
}

// Get returns the stored body unless it has expired.
func (s *SQLite) Get(ctx context.Context, typeTag, key string) ([]byte, bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	var data []byte
	var expiresAt int64
	err := s.db.QueryRowContext(qctx,
		`SELECT body, expires_at FROM cache_objects WHERE obj_type = ? AND obj_key = ?`, typeTag, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "sqlite get %s/%s", typeTag, key)
	}
	if expiresAt < s.cfg.now().UnixNano() {
		_, _ = s.db.ExecContext(qctx,
			`DELETE FROM cache_objects WHERE obj_type = ? AND obj_key = ? AND expires_at = ?`, typeTag, key, expiresAt)
		return nil, false, nil
	}
	return data, true, nil
}

// Purge deletes every expired row and returns how many were removed.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	res, err := s.db.ExecContext(qctx, `DELETE FROM cache_objects WHERE expires_at < ?`, s.cfg.now().UnixNano())
	if err != nil {
		return 0, errors.Wrap(err, "sqlite purge")
	}
	return res.RowsAffected()
}

// Close stops the purge loop and closes the database. It is safe to call
// more than once.
func (s *SQLite) Close() error {
	var dbErr error
	s.once.Do(func() {
		s.cancel()
		s.waitGroup.Wait()
		dbErr = s.db.Close()
	})
	return dbErr
}

func (s *SQLite) run() {
	defer s.waitGroup.Done()
	ticker := time.NewTicker(s.cfg.purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Purge(s.ctx)
			if err != nil {
				if s.ctx.Err() == nil {
					s.cfg.logger.Error("purge expired objects: %v", err)
				}
				continue
			}
			if n > 0 {
				s.cfg.logger.Debug("purged %d expired objects", n)
			}
		}
	}
}
