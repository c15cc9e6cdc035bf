package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assistant/core"
)

// Clock is a deterministic clock advancing one second per call.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// NewLogger returns a core.Logger recording messages, for assertions.
func NewLogger() *Logger {
	return &Logger{}
}

type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, fmt.Sprintf("%s: %s %v", level, msg, args))
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

func doc(t *testing.T, fields map[string]interface{}) json.RawMessage {
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	return data
}

func ids(t *testing.T, docs []json.RawMessage) []string {
	res := make([]string, 0, len(docs))
	for _, d := range docs {
		var m struct {
			ID string `json:"_id"`
		}
		require.NoError(t, json.Unmarshal(d, &m))
		res = append(res, m.ID)
	}
	return res
}

// RunStoreTests checks the behaviour every core.DocumentStore must have.
// newStore must return an empty store.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) core.DocumentStore) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	at := func(h int) string { return base.Add(time.Duration(h) * time.Hour).Format(time.RFC3339Nano) }

	t.Run("insert, get, replace, delete", func(t *testing.T) {
		store := newStore(t)
		id := uuid.NewString()

		_, err := store.GetDocument(ctx, "notes", id)
		assert.Equal(t, core.ErrNotFound, err)

		require.NoError(t, store.InsertDocument(ctx, "notes", id, doc(t, map[string]interface{}{"_id": id, "title": "a"})))
		got, err := store.GetDocument(ctx, "notes", id)
		require.NoError(t, err)
		assert.JSONEq(t, fmt.Sprintf(`{"_id": %q, "title": "a"}`, id), string(got))

		// collections are isolated
		_, err = store.GetDocument(ctx, "lists", id)
		assert.Equal(t, core.ErrNotFound, err)

		require.NoError(t, store.ReplaceDocument(ctx, "notes", id, doc(t, map[string]interface{}{"_id": id, "title": "b"})))
		got, err = store.GetDocument(ctx, "notes", id)
		require.NoError(t, err)
		assert.JSONEq(t, fmt.Sprintf(`{"_id": %q, "title": "b"}`, id), string(got))

		require.NoError(t, store.DeleteDocument(ctx, "notes", id))
		_, err = store.GetDocument(ctx, "notes", id)
		assert.Equal(t, core.ErrNotFound, err)

		assert.Equal(t, core.ErrNotFound, store.DeleteDocument(ctx, "notes", id))
		assert.Equal(t, core.ErrNotFound, store.ReplaceDocument(ctx, "notes", id, doc(t, map[string]interface{}{"_id": id})))
	})

	t.Run("list ordering", func(t *testing.T) {
		store := newStore(t)
		id1, id2, id3, id4 := "00000000-0000-4000-8000-000000000001", "00000000-0000-4000-8000-000000000002",
			"00000000-0000-4000-8000-000000000003", "00000000-0000-4000-8000-000000000004"

		require.NoError(t, store.InsertDocument(ctx, "appointments", id2, doc(t, map[string]interface{}{"_id": id2, "startDate": at(2)})))
		require.NoError(t, store.InsertDocument(ctx, "appointments", id1, doc(t, map[string]interface{}{"_id": id1, "startDate": at(5)})))
		require.NoError(t, store.InsertDocument(ctx, "appointments", id4, doc(t, map[string]interface{}{"_id": id4, "startDate": at(1)})))
		require.NoError(t, store.InsertDocument(ctx, "appointments", id3, doc(t, map[string]interface{}{"_id": id3, "startDate": at(2)})))

		asc, err := store.ListDocuments(ctx, "appointments", core.DBOrdering{Field: "startDate", Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{id4, id2, id3, id1}, ids(t, asc))

		desc, err := store.ListDocuments(ctx, "appointments", core.DBOrdering{Field: "startDate"})
		require.NoError(t, err)
		assert.Equal(t, []string{id1, id2, id3, id4}, ids(t, desc))

		empty, err := store.ListDocuments(ctx, "errands", core.DBOrdering{Field: "createdAt"})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("swap flag", func(t *testing.T) {
		store := newStore(t)
		id := uuid.NewString()
		require.NoError(t, store.InsertDocument(ctx, "emails", id, doc(t, map[string]interface{}{"_id": id, "subject": "hi"})))

		// a missing flag counts as false
		swapped, err := store.SwapDocumentFlag(ctx, "emails", id, "isSent", true, false)
		require.NoError(t, err)
		assert.False(t, swapped)

		swapped, err = store.SwapDocumentFlag(ctx, "emails", id, "isSent", false, true)
		require.NoError(t, err)
		assert.True(t, swapped)

		swapped, err = store.SwapDocumentFlag(ctx, "emails", id, "isSent", false, true)
		require.NoError(t, err)
		assert.False(t, swapped)

		got, err := store.GetDocument(ctx, "emails", id)
		require.NoError(t, err)
		assert.JSONEq(t, fmt.Sprintf(`{"_id": %q, "subject": "hi", "isSent": true}`, id), string(got))

		swapped, err = store.SwapDocumentFlag(ctx, "emails", id, "isSent", true, false)
		require.NoError(t, err)
		assert.True(t, swapped)

		_, err = store.SwapDocumentFlag(ctx, "emails", uuid.NewString(), "isSent", false, true)
		assert.Equal(t, core.ErrNotFound, err)
	})

	t.Run("concurrent swaps claim once", func(t *testing.T) {
		store := newStore(t)
		id := uuid.NewString()
		require.NoError(t, store.InsertDocument(ctx, "emails", id, doc(t, map[string]interface{}{"_id": id, "isSent": false})))

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				swapped, err := store.SwapDocumentFlag(ctx, "emails", id, "isSent", false, true)
				assert.NoError(t, err)
				if swapped {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
	})
}
