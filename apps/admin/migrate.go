package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/assistant/storage/database"
	"github.com/trezcool/assistant/storage/database/sqldb"
)

var migrateFunc = database.Migrate // mockable

var errNoSQL = errors.New("migrations require a SQL database engine (postgres or sqlite)")

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	db, ok := cli.db.(*sqldb.DB)
	if !ok {
		return errNoSQL
	}
	return migrateFunc(ctx, db, args[0], args[1:]...)
}
