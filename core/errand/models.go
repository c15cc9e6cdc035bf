package errand

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/record"
)

// Types
const (
	TypeResearch = "research"
	TypeShopping = "shopping"
	TypeGift     = "gift"
	TypeBooking  = "booking"
	TypeDelivery = "delivery"
	TypeOther    = "other"
)

// Statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var Schema = record.Schema{
	Name:       "Errand",
	Collection: "errands",
	Ordering:   core.DBOrdering{Field: "createdAt", Ascending: false},
}

type (
	Errand struct {
		record.Meta
		Title       string        `json:"title" validate:"required"`
		Description string        `json:"description"`
		Type        string        `json:"type" validate:"oneof=research shopping gift booking delivery other"`
		Status      string        `json:"status" validate:"oneof=pending in-progress completed cancelled"`
		DueDate     core.NullDate `json:"dueDate"`
		Priority    string        `json:"priority" validate:"oneof=low medium high urgent"`
		Notes       string        `json:"notes"`
		Results     []Result      `json:"results"`
	}

	Result struct {
		Item    string    `json:"item"`
		Link    string    `json:"link"`
		Price   string    `json:"price"`
		Notes   string    `json:"notes"`
		AddedAt time.Time `json:"addedAt"`
	}

	Service = record.Service[Errand, *Errand]
)

func (e *Errand) IsOpen() bool {
	return e.Status != StatusCompleted
}

func (e *Errand) Clean() {
	e.Title = core.CleanString(e.Title)
	e.Description = core.CleanString(e.Description)
	e.Type = core.CleanString(e.Type)
	e.Status = core.CleanString(e.Status)
	e.Priority = core.CleanString(e.Priority)
}

func (e *Errand) SetDefaults(now time.Time) {
	if e.Type == "" {
		e.Type = TypeOther
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	if e.Priority == "" {
		e.Priority = PriorityMedium
	}
	if e.Results == nil {
		e.Results = []Result{}
	}
	for i := range e.Results {
		if e.Results[i].AddedAt.IsZero() {
			e.Results[i].AddedAt = now
		}
	}
}

func NewService(store core.DocumentStore, validate *validator.Validate, translator ut.Translator) *Service {
	return record.NewService[Errand, *Errand](Schema, store, validate, translator)
}
