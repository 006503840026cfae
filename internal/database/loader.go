// Package database loads normalized tables into PostgreSQL.
//
// Each table is created on demand with a text column per field and a primary
// key over the whole tuple, mirroring the uniqueness of the CSV outputs. Rows
// are streamed with the COPY protocol into a temporary staging table and then
// merged with ON CONFLICT DO NOTHING, so reloading the same source is a no-op
// even without truncation. All tables are loaded in a single transaction.
//
// Postgres text cannot hold NUL bytes or invalid UTF-8. The CSV outputs accept
// any bytes, but the loader rejects such values before COPY and names the
// table, row and column in the error.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/salesnorm/internal/core"
	"github.com/JonMunkholm/salesnorm/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx.Tx the loader needs.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(context.Context) (pgx.Tx, error)
}

// LoadResult reports what happened to one table.
type LoadResult struct {
	Table    string
	Copied   int64 // rows streamed to the staging table
	Inserted int64 // rows new to the target table
}

// Loader writes datasets to a Postgres schema.
type Loader struct {
	db       TxBeginner
	schema   string
	truncate bool
}

// NewLoader creates a Loader targeting schema.
func NewLoader(db TxBeginner, schema string, truncate bool) *Loader {
	return &Loader{db: db, schema: schema, truncate: truncate}
}

// Connect opens and pings a connection pool.
func Connect(ctx context.Context, databaseURL string, maxConns int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Load writes every table of ds inside one transaction. On any failure the
// transaction is rolled back and a *core.LoadError is returned.
func (l *Loader) Load(ctx context.Context, ds *core.Dataset, order core.OrderPolicy) ([]LoadResult, error) {
	start := time.Now()

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return nil, &core.LoadError{Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback(ctx) // No-op if already committed

	results := make([]LoadResult, 0, len(ds.Tables))
	for _, t := range ds.Tables {
		res, err := l.loadTable(ctx, tx, t, order)
		if err != nil {
			return nil, &core.LoadError{Table: t.Def.Info.Key, Err: err}
		}
		logging.WithFields(ctx, "table", res.Table).Info("table loaded",
			"copied", res.Copied,
			"inserted", res.Inserted,
		)
		results = append(results, res)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &core.LoadError{Err: fmt.Errorf("commit: %w", err)}
	}

	logging.FromContext(ctx).Info("database load complete",
		"schema", l.schema,
		"tables", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func (l *Loader) loadTable(ctx context.Context, tx DBTX, t *core.Table, order core.OrderPolicy) (LoadResult, error) {
	name := t.Def.Info.Key
	cols := ColumnNames(t.Def, t.Header)
	target := pgx.Identifier{l.schema, name}
	stage := pgx.Identifier{"stage_" + name}

	if _, err := tx.Exec(ctx, createTableSQL(target, cols)); err != nil {
		return LoadResult{}, fmt.Errorf("create table: %w", err)
	}
	if l.truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE "+target.Sanitize()); err != nil {
			return LoadResult{}, fmt.Errorf("truncate: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, createStageSQL(stage, target)); err != nil {
		return LoadResult{}, fmt.Errorf("create staging table: %w", err)
	}

	rows := t.Set.Records(order)
	copied, err := tx.CopyFrom(ctx, stage, cols, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		return copyValues(rows[i], i+1, cols)
	}))
	if err != nil {
		return LoadResult{}, fmt.Errorf("copy: %w", err)
	}

	tag, err := tx.Exec(ctx, mergeSQL(target, stage))
	if err != nil {
		return LoadResult{}, fmt.Errorf("merge: %w", err)
	}

	return LoadResult{Table: name, Copied: copied, Inserted: tag.RowsAffected()}, nil
}

// copyValues converts one record to COPY values. rowNum is 1-indexed within
// the table's enumeration order.
func copyValues(rec core.Record, rowNum int, cols []string) ([]any, error) {
	vals := make([]any, len(rec))
	for j, f := range rec {
		if !utf8.ValidString(f) {
			return nil, fmt.Errorf("row %d column %s: value is not valid UTF-8", rowNum, cols[j])
		}
		if strings.IndexByte(f, 0) >= 0 {
			return nil, fmt.Errorf("row %d column %s: value contains a NUL byte", rowNum, cols[j])
		}
		vals[j] = f
	}
	return vals, nil
}

// maxIdentifierLen is Postgres's NAMEDATALEN - 1.
const maxIdentifierLen = 63

// ColumnNames derives database column names from the table's header row.
// Header text is lowercased and reduced to [a-z0-9_]; empty or repeated
// results fall back to the column's role name, and a role name that is
// already taken gets its 1-indexed position as a suffix. Names never exceed
// 63 bytes and are always distinct.
func ColumnNames(def core.TableDefinition, header core.Record) []string {
	roles := def.ColumnNames()
	out := make([]string, len(roles))
	seen := make(map[string]bool, len(roles))

	for i := range roles {
		name := ""
		if i < len(header) {
			name = identifier(header[i])
		}
		if name == "" || seen[name] {
			name = identifier(roles[i])
		}
		if seen[name] {
			name = uniqueName(name, i+1, seen)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// uniqueName appends _<n> to base, starting at pos, until the result is unused.
func uniqueName(base string, pos int, seen map[string]bool) string {
	for n := pos; ; n++ {
		suffix := fmt.Sprintf("_%d", n)
		b := base
		if len(b)+len(suffix) > maxIdentifierLen {
			b = b[:maxIdentifierLen-len(suffix)]
		}
		if name := b + suffix; !seen[name] {
			return name
		}
	}
}

func identifier(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.':
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if len(name) > maxIdentifierLen {
		name = strings.TrimRight(name[:maxIdentifierLen], "_")
	}
	return name
}

func createTableSQL(target pgx.Identifier, cols []string) string {
	defs := make([]string, len(cols))
	keys := make([]string, len(cols))
	for i, c := range cols {
		q := pgx.Identifier{c}.Sanitize()
		defs[i] = q + " text NOT NULL"
		keys[i] = q
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s, PRIMARY KEY (%s))",
		target.Sanitize(), strings.Join(defs, ", "), strings.Join(keys, ", "))
}

func createStageSQL(stage, target pgx.Identifier) string {
	return fmt.Sprintf("CREATE TEMP TABLE %s (LIKE %s) ON COMMIT DROP",
		stage.Sanitize(), target.Sanitize())
}

func mergeSQL(target, stage pgx.Identifier) string {
	return fmt.Sprintf("INSERT INTO %s SELECT * FROM %s ON CONFLICT DO NOTHING",
		target.Sanitize(), stage.Sanitize())
}
