package database

import (
	"context"
	"embed"
	"time"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/storage/database/inmemdb"
	"github.com/trezcool/assistant/storage/database/sqldb"
)

//go:embed migrations
var migrations embed.FS

var gooseRunFunc = goose.RunContext // mockable

// Open returns the document store selected by the configuration.
// SQL stores are pinged until ready and migrated to the latest version.
func Open(ctx context.Context, conf *core.Config) (core.DocumentStore, error) {
	if conf.Database.Engine == core.EngineMemory {
		return inmemdb.Open()
	}
	return OpenSQL(ctx, conf.Database.Engine, conf.Database.URL)
}

// OpenSQL opens, pings and migrates a SQL store.
func OpenSQL(ctx context.Context, engine, url string) (*sqldb.DB, error) {
	db, err := sqldb.Open(engine, url)
	if err != nil {
		return nil, err
	}
	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	if err = Migrate(ctx, db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db core.DocumentStore) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping(ctx)
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate runs a goose command (up, down, status, version, redo, reset, up-to VERSION, ...)
// with the embedded migrations of the store's engine.
func Migrate(ctx context.Context, db *sqldb.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(db.GooseDialect()); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	dir := "migrations/" + engineDir(db.GooseDialect())
	if err := gooseRunFunc(ctx, command, db.SQL(), dir, args...); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

func engineDir(gooseDialect string) string {
	if gooseDialect == "sqlite3" {
		return core.EngineSQLite
	}
	return core.EnginePostgres
}
