package note

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/record"
)

var Schema = record.Schema{
	Name:       "Note",
	Collection: "notes",
	Ordering:   core.DBOrdering{Field: "updatedAt", Ascending: false},
}

type (
	Note struct {
		record.Meta
		Title   string   `json:"title" validate:"required"`
		Content string   `json:"content" validate:"notblank"`
		Tags    []string `json:"tags"`
	}

	Service = record.Service[Note, *Note]
)

func (n *Note) Clean() {
	n.Title = core.CleanString(n.Title)
	n.Tags = core.CleanStrings(n.Tags)
}

func (n *Note) SetDefaults(time.Time) {
	if n.Tags == nil {
		n.Tags = []string{}
	}
}

func NewService(store core.DocumentStore, validate *validator.Validate, translator ut.Translator) *Service {
	return record.NewService[Note, *Note](Schema, store, validate, translator)
}
