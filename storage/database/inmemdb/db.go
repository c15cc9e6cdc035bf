// Package inmemdb is a map-backed core.DocumentStore used by tests and single-process setups.
package inmemdb

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/trezcool/assistant/core"
)

type (
	DB struct {
		mutex  sync.RWMutex
		tables map[string]*table
	}

	table struct {
		docs map[string]json.RawMessage
	}
)

var _ core.DocumentStore = (*DB)(nil)

func Open() (*DB, error) {
	return &DB{tables: make(map[string]*table)}, nil
}

// table returns the named collection, creating it if needed. Callers must hold the write lock.
func (db *DB) table(name string) *table {
	t, ok := db.tables[name]
	if !ok {
		t = &table{docs: make(map[string]json.RawMessage)}
		db.tables[name] = t
	}
	return t
}

func (db *DB) ListDocuments(_ context.Context, collection string, ord core.DBOrdering) ([]json.RawMessage, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, ok := db.tables[collection]
	if !ok {
		return []json.RawMessage{}, nil
	}

	type entry struct {
		id  string
		key gjson.Result
		doc json.RawMessage
	}
	entries := make([]entry, 0, len(t.docs))
	for id, doc := range t.docs {
		entries = append(entries, entry{id: id, key: gjson.GetBytes(doc, ord.Field), doc: doc})
	}
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := entries[i].key.Time(), entries[j].key.Time()
		if !ti.Equal(tj) {
			if ord.Ascending {
				return ti.Before(tj)
			}
			return ti.After(tj)
		}
		return entries[i].id < entries[j].id
	})

	docs := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, clone(e.doc))
	}
	return docs, nil
}

func (db *DB) GetDocument(_ context.Context, collection, id string) (json.RawMessage, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if t, ok := db.tables[collection]; ok {
		if doc, ok := t.docs[id]; ok {
			return clone(doc), nil
		}
	}
	return nil, core.ErrNotFound
}

func (db *DB) InsertDocument(_ context.Context, collection, id string, body json.RawMessage) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t := db.table(collection)
	if _, exists := t.docs[id]; exists {
		return errors.Errorf("duplicate id %s in %s", id, collection)
	}
	t.docs[id] = clone(body)
	return nil
}

func (db *DB) ReplaceDocument(_ context.Context, collection, id string, body json.RawMessage) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t := db.table(collection)
	if _, exists := t.docs[id]; !exists {
		return core.ErrNotFound
	}
	t.docs[id] = clone(body)
	return nil
}

func (db *DB) DeleteDocument(_ context.Context, collection, id string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t := db.table(collection)
	if _, exists := t.docs[id]; !exists {
		return core.ErrNotFound
	}
	delete(t.docs, id)
	return nil
}

func (db *DB) SwapDocumentFlag(_ context.Context, collection, id, field string, from, to bool) (bool, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t := db.table(collection)
	doc, exists := t.docs[id]
	if !exists {
		return false, core.ErrNotFound
	}
	if gjson.GetBytes(doc, field).Bool() != from {
		return false, nil
	}
	updated, err := sjson.SetBytes(clone(doc), field, to)
	if err != nil {
		return false, errors.Wrapf(err, "setting %s", field)
	}
	t.docs[id] = updated
	return true, nil
}

func (db *DB) Ping(context.Context) error { return nil }

func (db *DB) Close() error { return nil }

// Reset drops every collection.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.tables = make(map[string]*table)
}

func clone(doc json.RawMessage) json.RawMessage {
	return bytes.Clone(doc)
}
