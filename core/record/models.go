// Package record implements the CRUD service shared by every collection of the assistant.
package record

import (
	"time"

	"github.com/trezcool/assistant/core"
)

// server-managed keys; clients can never set them
const (
	keyID        = "_id"
	keyCreatedAt = "createdAt"
	keyUpdatedAt = "updatedAt"
)

type (
	// Meta holds the fields every record carries. Entities embed it.
	Meta struct {
		ID        string    `json:"_id"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Document is implemented by pointers to entities embedding Meta.
	Document interface {
		Base() *Meta
	}

	// Schema describes a collection.
	Schema struct {
		Name       string // e.g. "Appointment"; used in error messages
		Collection string
		Ordering   core.DBOrdering
		// Protected keys are dropped from create payloads.
		Protected []string
	}

	cleaner interface {
		Clean()
	}

	defaulter interface {
		SetDefaults(now time.Time)
	}
)

func (m *Meta) Base() *Meta { return m }

// DeletedMessage confirms the deletion of a record.
func (s Schema) DeletedMessage() string {
	return s.Name + " deleted successfully"
}
