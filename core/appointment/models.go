package appointment

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/record"
)

// Types
const (
	TypeDoctor       = "doctor"
	TypeSalon        = "salon"
	TypeKidsActivity = "kids-activity"
	TypeHomeschool   = "homeschool"
	TypeMeeting      = "meeting"
	TypePersonal     = "personal"
	TypeFamily       = "family"
	TypeOther        = "other"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var Schema = record.Schema{
	Name:       "Appointment",
	Collection: "appointments",
	Ordering:   core.DBOrdering{Field: "startDate", Ascending: true},
}

type (
	Appointment struct {
		record.Meta
		Title       string     `json:"title" validate:"required"`
		Description string     `json:"description"`
		Type        string     `json:"type" validate:"oneof=doctor salon kids-activity homeschool meeting personal family other"`
		StartDate   core.Date  `json:"startDate" validate:"required"`
		EndDate     core.Date  `json:"endDate" validate:"required"`
		Location    string     `json:"location"`
		Attendees   []string   `json:"attendees"`
		Status      string     `json:"status" validate:"oneof=scheduled confirmed cancelled completed"`
		Reminders   []Reminder `json:"reminders" validate:"dive"`
	}

	Reminder struct {
		Time core.NullDate `json:"time"`
		Sent bool          `json:"sent"`
	}

	Service = record.Service[Appointment, *Appointment]
)

func (a *Appointment) Clean() {
	a.Title = core.CleanString(a.Title)
	a.Description = core.CleanString(a.Description)
	a.Location = core.CleanString(a.Location)
	a.Attendees = core.CleanStrings(a.Attendees)
	a.Type = core.CleanString(a.Type)
	a.Status = core.CleanString(a.Status)
}

func (a *Appointment) SetDefaults(time.Time) {
	if a.Type == "" {
		a.Type = TypeOther
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if a.Attendees == nil {
		a.Attendees = []string{}
	}
	if a.Reminders == nil {
		a.Reminders = []Reminder{}
	}
}

func NewService(store core.DocumentStore, validate *validator.Validate, translator ut.Translator) *Service {
	return record.NewService[Appointment, *Appointment](Schema, store, validate, translator)
}
