package list

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/record"
)

// Categories
const (
	CategoryPersonal  = "personal"
	CategoryFamily    = "family"
	CategoryShopping  = "shopping"
	CategoryHousehold = "household"
	CategoryWork      = "work"
	CategoryOther     = "other"
)

// Item priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var Schema = record.Schema{
	Name:       "List",
	Collection: "lists",
	Ordering:   core.DBOrdering{Field: "createdAt", Ascending: false},
}

type (
	List struct {
		record.Meta
		Title    string `json:"title" validate:"required"`
		Items    []Item `json:"items" validate:"dive"`
		Category string `json:"category" validate:"oneof=personal family shopping household work other"`
	}

	Item struct {
		Text      string `json:"text" validate:"required"`
		Completed bool   `json:"completed"`
		Priority  string `json:"priority" validate:"oneof=low medium high"`
	}

	Service = record.Service[List, *List]
)

func (l *List) Clean() {
	l.Title = core.CleanString(l.Title)
	l.Category = core.CleanString(l.Category)
	for i := range l.Items {
		l.Items[i].Text = core.CleanString(l.Items[i].Text)
		l.Items[i].Priority = core.CleanString(l.Items[i].Priority)
	}
}

func (l *List) SetDefaults(time.Time) {
	if l.Category == "" {
		l.Category = CategoryOther
	}
	if l.Items == nil {
		l.Items = []Item{}
	}
	for i := range l.Items {
		if l.Items[i].Priority == "" {
			l.Items[i].Priority = PriorityMedium
		}
	}
}

func NewService(store core.DocumentStore, validate *validator.Validate, translator ut.Translator) *Service {
	return record.NewService[List, *List](Schema, store, validate, translator)
}
