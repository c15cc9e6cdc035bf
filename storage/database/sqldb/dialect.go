package sqldb

import (
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core"
)

func init() {
	// modernc.org/sqlite registers itself as "sqlite"
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var fieldNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// dialect holds the engine specific JSON expressions.
type dialect interface {
	// driverName is the database/sql driver to open.
	driverName() string
	// gooseDialect is the dialect name understood by goose.
	gooseDialect() string
	// bodyParam is the placeholder of a document body.
	bodyParam() string
	// orderBy returns the expression sorting documents by a timestamp field.
	orderBy(field string) string
	// setFlag returns the expression of a document body with a boolean field set to the first param.
	setFlag(field string) string
	// flagEquals returns the condition comparing a boolean field (false when missing) with a param.
	flagEquals(field string) string
	// flagValue converts a boolean to the param bound by setFlag and flagEquals.
	flagValue(b bool) interface{}
}

func dialectFor(engine string) (dialect, error) {
	switch engine {
	case core.EnginePostgres:
		return postgres{}, nil
	case core.EngineSQLite:
		return sqlite{}, nil
	}
	return nil, errors.Errorf("unsupported SQL engine %q", engine)
}

func checkField(field string) error {
	if !fieldNameRegex.MatchString(field) {
		return errors.Errorf("invalid document field %q", field)
	}
	return nil
}

type postgres struct{}

func (postgres) driverName() string   { return "postgres" }
func (postgres) gooseDialect() string { return "postgres" }
func (postgres) bodyParam() string    { return "CAST(? AS jsonb)" }

func (postgres) orderBy(field string) string {
	return fmt.Sprintf("(body->>'%s')::timestamptz", field)
}

func (postgres) setFlag(field string) string {
	return fmt.Sprintf("jsonb_set(body, '{%s}', to_jsonb(CAST(? AS boolean)))", field)
}

func (postgres) flagEquals(field string) string {
	return fmt.Sprintf("COALESCE((body->>'%s')::boolean, false) = CAST(? AS boolean)", field)
}

func (postgres) flagValue(b bool) interface{} { return b }

type sqlite struct{}

func (sqlite) driverName() string   { return "sqlite" }
func (sqlite) gooseDialect() string { return "sqlite3" }
func (sqlite) bodyParam() string    { return "?" }

func (sqlite) orderBy(field string) string {
	return fmt.Sprintf("julianday(json_extract(body, '$.%s'))", field)
}

func (sqlite) setFlag(field string) string {
	return fmt.Sprintf("json_set(body, '$.%s', json(CASE WHEN ? = 1 THEN 'true' ELSE 'false' END))", field)
}

func (sqlite) flagEquals(field string) string {
	return fmt.Sprintf("COALESCE(json_extract(body, '$.%s'), 0) = ?", field)
}

func (sqlite) flagValue(b bool) interface{} {
	if b {
		return 1
	}
	return 0
}
