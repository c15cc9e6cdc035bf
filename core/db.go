package core

import (
	"context"
	"encoding/json"
)

type (
	// DocumentStore persists JSON documents grouped in collections.
	// Missing documents are reported with ErrNotFound.
	DocumentStore interface {
		ListDocuments(ctx context.Context, collection string, ord DBOrdering) ([]json.RawMessage, error)
		GetDocument(ctx context.Context, collection, id string) (json.RawMessage, error)
		InsertDocument(ctx context.Context, collection, id string, body json.RawMessage) error
		ReplaceDocument(ctx context.Context, collection, id string, body json.RawMessage) error
		DeleteDocument(ctx context.Context, collection, id string) error
		// SwapDocumentFlag sets the boolean `field` to `to` only if it currently equals `from`
		// (a missing field counts as false). It reports whether the swap happened.
		SwapDocumentFlag(ctx context.Context, collection, id, field string, from, to bool) (bool, error)
		Ping(ctx context.Context) error
		Close() error
	}
)

// DBOrdering orders documents by a timestamp field, ties are broken by id ascending.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
