// Package pagecache stores fetched source markup in SQL so repeated requests
// for the same article skip the network. Only markup is cached; task state
// never touches this store.
package pagecache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a page cache backed by database/sql.
type Store struct {
	db       *sql.DB
	postgres bool
	logger   *slog.Logger
	now      func() time.Time
}

// Open connects to the cache database and applies pending migrations.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "page_cache", "driver", driver)

	var (
		sqlDriver string
		dialect   goose.Dialect
	)
	switch driver {
	case DriverSQLite:
		sqlDriver, dialect = "sqlite", goose.DialectSQLite3
	case DriverPostgres:
		sqlDriver, dialect = "pgx", goose.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported page cache driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("page cache dsn is empty")
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open page cache: %w", err)
	}
	if driver == DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to page cache: %w", err)
	}

	if err := migrate(ctx, db, dialect, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:       db,
		postgres: driver == DriverPostgres,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, logger *slog.Logger) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply page cache migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("applied migration",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// Get returns the cached body for url if it was stored within maxAge.
// A non-positive maxAge accepts entries of any age.
func (s *Store) Get(ctx context.Context, url string, maxAge time.Duration) (string, bool, error) {
	var (
		body      string
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT body, fetched_at FROM pages WHERE url = ?`), url).
		Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached page: %w", err)
	}

	if maxAge > 0 && s.now().Sub(time.Unix(fetchedAt, 0)) > maxAge {
		return "", false, nil
	}
	return body, true, nil
}

// Put stores body for url, replacing any previous entry.
func (s *Store) Put(ctx context.Context, url, body string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO pages (url, body, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`),
		url, body, s.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to cache page: %w", err)
	}
	return nil
}

// Purge removes entries stored before cutoff.
func (s *Store) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM pages WHERE fetched_at < ?`), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge page cache: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("purged cached pages", "count", n)
	}
	return n, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
