// Package repository implements the relational store for persons, files, and
// table records over database/sql, speaking sqlite by default and Postgres
// when the DSN says so.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/formhelper/formhelper/internal/common"
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"
)

// DB is the single shared store handle. Exactly one operation may hold it at
// a time; callers run their parse work first and touch the store only for
// the short persistence phase, so the mutex is never held across a slow
// extraction.
type DB struct {
	mu     sync.Mutex
	sql    *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the store and ensures the schema exists. A DSN starting
// with postgres:// or postgresql:// selects the Postgres driver; anything
// else is treated as a sqlite file path.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := driverSQLite
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		driver = driverPostgres
	}

	logger.Info("connecting to store", "driver", driver)
	conn, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open store", "driver", driver, "error", err)
		return nil, &common.StoreError{Op: "open", Cause: err}
	}
	if driver == driverSQLite {
		// sqlite permits one writer; a single connection keeps the pool
		// honest about it.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{sql: conn, driver: driver, logger: logger}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Info("store ready", "driver", driver)
	return db, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sql.Close()
}

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.sql.PingContext(ctx); err != nil {
		return &common.StoreError{Op: "ping", Cause: err}
	}
	return nil
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := schemaSQLite
	if d.driver == driverPostgres {
		stmts = schemaPostgres
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			d.logger.Error("schema migration failed", "error", err)
			return &common.StoreError{Op: "migrate", Cause: err}
		}
	}
	return nil
}

// rebind converts ?-style placeholders to $N for the Postgres driver.
func (d *DB) rebind(query string) string {
	if d.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// insertReturningID runs an INSERT and reports the generated id, papering
// over the drivers' split: sqlite exposes LastInsertId, Postgres needs a
// RETURNING clause.
func (d *DB) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	if d.driver == driverPostgres {
		var id int64
		err := d.sql.QueryRowContext(ctx, d.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := d.sql.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// parseTimestamp tolerates the representations the two drivers hand back:
// native time.Time from pgx, text from sqlite.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
