// Package sqldb is a core.DocumentStore keeping JSON documents in a single SQL table.
// It supports PostgreSQL (jsonb) and SQLite (JSON1).
package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trezcool/assistant/core"
)

type DB struct {
	db      *sqlx.DB
	dialect dialect
	now     func() time.Time
}

var _ core.DocumentStore = (*DB)(nil)

// Open opens a connection pool for the given engine. It does not ping nor migrate the database.
func Open(engine, url string) (*DB, error) {
	d, err := dialectFor(engine)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(d.driverName(), url)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if engine == core.EngineSQLite {
		// one connection: SQLite has a single writer and `:memory:` databases are per connection
		db.SetMaxOpenConns(1)
	}
	return &DB{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// SQL exposes the underlying pool (e.g. for migrations).
func (db *DB) SQL() *sql.DB { return db.db.DB }

// GooseDialect is the goose dialect name of the engine.
func (db *DB) GooseDialect() string { return db.dialect.gooseDialect() }

func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) ListDocuments(ctx context.Context, collection string, ord core.DBOrdering) ([]json.RawMessage, error) {
	if err := checkField(ord.Field); err != nil {
		return nil, err
	}
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	q := db.db.Rebind(
		"SELECT body FROM documents WHERE collection = ? ORDER BY " +
			db.dialect.orderBy(ord.Field) + " " + direction + ", id ASC",
	)

	var bodies []string
	if err := db.db.SelectContext(ctx, &bodies, q, collection); err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}
	docs := make([]json.RawMessage, 0, len(bodies))
	for _, b := range bodies {
		docs = append(docs, json.RawMessage(b))
	}
	return docs, nil
}

func (db *DB) GetDocument(ctx context.Context, collection, id string) (json.RawMessage, error) {
	q := db.db.Rebind("SELECT body FROM documents WHERE collection = ? AND id = ?")

	var body string
	if err := db.db.GetContext(ctx, &body, q, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, errors.Wrap(err, "selecting document")
	}
	return json.RawMessage(body), nil
}

func (db *DB) InsertDocument(ctx context.Context, collection, id string, body json.RawMessage) error {
	q := db.db.Rebind(
		"INSERT INTO documents (collection, id, body, created_at, updated_at) VALUES (?, ?, " +
			db.dialect.bodyParam() + ", ?, ?)",
	)
	now := db.now()
	if _, err := db.db.ExecContext(ctx, q, collection, id, string(body), now, now); err != nil {
		return errors.Wrap(err, "inserting document")
	}
	return nil
}

func (db *DB) ReplaceDocument(ctx context.Context, collection, id string, body json.RawMessage) error {
	q := db.db.Rebind(
		"UPDATE documents SET body = " + db.dialect.bodyParam() +
			", updated_at = ? WHERE collection = ? AND id = ?",
	)
	res, err := db.db.ExecContext(ctx, q, string(body), db.now(), collection, id)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	return checkAffected(res)
}

func (db *DB) DeleteDocument(ctx context.Context, collection, id string) error {
	q := db.db.Rebind("DELETE FROM documents WHERE collection = ? AND id = ?")
	res, err := db.db.ExecContext(ctx, q, collection, id)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	return checkAffected(res)
}

// SwapDocumentFlag runs a single conditional UPDATE, so concurrent swaps of the same flag
// can't both succeed.
func (db *DB) SwapDocumentFlag(ctx context.Context, collection, id, field string, from, to bool) (bool, error) {
	if err := checkField(field); err != nil {
		return false, err
	}
	q := db.db.Rebind(
		"UPDATE documents SET body = " + db.dialect.setFlag(field) +
			", updated_at = ? WHERE collection = ? AND id = ? AND " + db.dialect.flagEquals(field),
	)
	res, err := db.db.ExecContext(ctx, q, db.dialect.flagValue(to), db.now(), collection, id, db.dialect.flagValue(from))
	if err != nil {
		return false, errors.Wrap(err, "swapping document flag")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "swapping document flag")
	}
	if n > 0 {
		return true, nil
	}

	// either the flag did not match or the document is gone
	var exists int
	q = db.db.Rebind("SELECT 1 FROM documents WHERE collection = ? AND id = ?")
	if err := db.db.GetContext(ctx, &exists, q, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, core.ErrNotFound
		}
		return false, errors.Wrap(err, "checking document")
	}
	return false, nil
}

// Reset deletes every document. Meant for tests.
func (db *DB) Reset(ctx context.Context) error {
	if _, err := db.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return errors.Wrap(err, "resetting documents")
	}
	return nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
