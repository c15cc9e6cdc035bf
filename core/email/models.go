package email

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/record"
)

// Statuses
const (
	StatusUnread    = "unread"
	StatusRead      = "read"
	StatusFlagged   = "flagged"
	StatusResponded = "responded"
	StatusArchived  = "archived"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const sentFlag = "isSent"

var Schema = record.Schema{
	Name:       "Email",
	Collection: "emails",
	Ordering:   core.DBOrdering{Field: "receivedAt", Ascending: false},
	Protected:  []string{sentFlag, "sentAt"},
}

type (
	Email struct {
		record.Meta
		Subject    string    `json:"subject" validate:"required"`
		From       string    `json:"from" validate:"required"`
		To         string    `json:"to" validate:"required"`
		Body       string    `json:"body" validate:"notblank"`
		Account    string    `json:"account" validate:"required"`
		Status     string    `json:"status" validate:"oneof=unread read flagged responded archived"`
		Priority   string    `json:"priority" validate:"oneof=low medium high urgent"`
		ReceivedAt core.Date `json:"receivedAt"`
		IsSent     bool      `json:"isSent"`
		SentAt     null.Time `json:"sentAt"`
	}

	Records = record.Service[Email, *Email]
)

func (e *Email) IsUnread() bool {
	return e.Status == StatusUnread
}

func (e *Email) Clean() {
	e.Subject = core.CleanString(e.Subject)
	e.From = core.CleanString(e.From)
	e.To = core.CleanString(e.To)
	e.Account = core.CleanString(e.Account)
	e.Status = core.CleanString(e.Status)
	e.Priority = core.CleanString(e.Priority)
}

func (e *Email) SetDefaults(now time.Time) {
	if e.Status == "" {
		e.Status = StatusUnread
	}
	if e.Priority == "" {
		e.Priority = PriorityMedium
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = core.DateFrom(now)
	}
}

// Message builds the outbound message for this email. The sender falls back to defaultFrom.
func (e *Email) Message(defaultFrom string) *core.EmailMessage {
	from := e.From
	if from == "" {
		from = defaultFrom
	}
	msg := &core.EmailMessage{
		To:          core.ParseAddressList(e.To),
		Subject:     e.Subject,
		TextContent: e.Body,
		HTMLContent: core.TextToHTML(e.Body),
	}
	if addrs := core.ParseAddressList(from); len(addrs) > 0 {
		msg.From = addrs[0]
	}
	return msg
}

func NewRecords(store core.DocumentStore, validate *validator.Validate, translator ut.Translator) *Records {
	return record.NewService[Email, *Email](Schema, store, validate, translator)
}
