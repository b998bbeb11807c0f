/*
Copyright (C) 2023, 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package history records one row per finished search.Session --
// relation text, bounds, resolution, elapsed time and undecided-pixel
// count -- to whatever SQL server --history DSN names, the same way
// storage/mysql_import.go drives an arbitrary source database through
// database/sql without hand-rolling a wire protocol.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Record is one finished session, the row shape --history writes.
type Record struct {
	SessionID       string
	Relation        string
	Bounds          [4]float64
	Width, Height   int
	Polar           bool
	Elapsed         time.Duration
	UndecidedPixels int
	FinishedAt      time.Time
}

// Ledger appends Records to a SQL table, driver chosen by DSN scheme.
type Ledger struct {
	db     *sql.DB
	driver string
}

const schemaMySQL = `CREATE TABLE IF NOT EXISTS graph_sessions (
	session_id VARCHAR(64) PRIMARY KEY,
	relation TEXT NOT NULL,
	x0 DOUBLE NOT NULL, x1 DOUBLE NOT NULL, y0 DOUBLE NOT NULL, y1 DOUBLE NOT NULL,
	width INT NOT NULL, height INT NOT NULL, polar BOOLEAN NOT NULL,
	elapsed_ms BIGINT NOT NULL, undecided_pixels INT NOT NULL,
	finished_at DATETIME NOT NULL
)`

const schemaPostgres = `CREATE TABLE IF NOT EXISTS graph_sessions (
	session_id VARCHAR(64) PRIMARY KEY,
	relation TEXT NOT NULL,
	x0 DOUBLE PRECISION NOT NULL, x1 DOUBLE PRECISION NOT NULL,
	y0 DOUBLE PRECISION NOT NULL, y1 DOUBLE PRECISION NOT NULL,
	width INT NOT NULL, height INT NOT NULL, polar BOOLEAN NOT NULL,
	elapsed_ms BIGINT NOT NULL, undecided_pixels INT NOT NULL,
	finished_at TIMESTAMP NOT NULL
)`

// Open selects go-sql-driver/mysql or lib/pq by the DSN's scheme
// (mysql://... or postgres://.../postgresql://...) and ensures the
// ledger table exists, mirroring mysqlEnsureTriggerTable's
// create-if-missing approach.
func Open(ctx context.Context, dsn string) (*Ledger, error) {
	driver, connStr, err := splitDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping %s: %w", driver, err)
	}
	schema := schemaMySQL
	if driver == "postgres" {
		schema = schemaPostgres
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}
	return &Ledger{db: db, driver: driver}, nil
}

func splitDSN(dsn string) (driver, connStr string, err error) {
	switch {
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	default:
		return "", "", fmt.Errorf("history: unrecognized DSN scheme in %q (want mysql:// or postgres://)", dsn)
	}
}

// Append inserts one finished session's row.
func (l *Ledger) Append(ctx context.Context, r Record) error {
	placeholder := placeholders(l.driver, 12)
	query := fmt.Sprintf(`INSERT INTO graph_sessions
		(session_id, relation, x0, x1, y0, y1, width, height, polar, elapsed_ms, undecided_pixels, finished_at)
		VALUES (%s)`, placeholder)
	_, err := l.db.ExecContext(ctx, query,
		r.SessionID, r.Relation, r.Bounds[0], r.Bounds[1], r.Bounds[2], r.Bounds[3],
		r.Width, r.Height, r.Polar, r.Elapsed.Milliseconds(), r.UndecidedPixels, r.FinishedAt,
	)
	return err
}

// placeholders builds a MySQL "?"-style or Postgres "$n"-style bind
// list; the query text otherwise being handwritten column-for-column
// like mysqlImportColumns keeps the schema readable in one place.
func placeholders(driver string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if driver == "postgres" {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// Close releases the underlying *sql.DB.
func (l *Ledger) Close() error { return l.db.Close() }
