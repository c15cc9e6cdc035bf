package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/assistant/core/appointment"
	"github.com/trezcool/assistant/core/email"
	"github.com/trezcool/assistant/core/errand"
	"github.com/trezcool/assistant/core/list"
	"github.com/trezcool/assistant/core/note"
)

// Summary holds the dashboard counts.
type Summary struct {
	Appointments int `json:"appointments"`
	Lists        int `json:"lists"`
	Notes        int `json:"notes"`
	Emails       int `json:"emails"`  // unread only
	Errands      int `json:"errands"` // not completed
}

type lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

type Service struct {
	appointments lister[appointment.Appointment]
	lists        lister[list.List]
	notes        lister[note.Note]
	emails       lister[email.Email]
	errands      lister[errand.Errand]
}

func NewService(
	appointments lister[appointment.Appointment],
	lists lister[list.List],
	notes lister[note.Note],
	emails lister[email.Email],
	errands lister[errand.Errand],
) *Service {
	return &Service{
		appointments: appointments,
		lists:        lists,
		notes:        notes,
		emails:       emails,
		errands:      errands,
	}
}

// Summary lists the five collections concurrently and counts them.
// Any failing collection fails the whole summary.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := svc.appointments.List(gctx)
		if err != nil {
			return errors.Wrap(err, "counting appointments")
		}
		sum.Appointments = len(recs)
		return nil
	})
	g.Go(func() error {
		recs, err := svc.lists.List(gctx)
		if err != nil {
			return errors.Wrap(err, "counting lists")
		}
		sum.Lists = len(recs)
		return nil
	})
	g.Go(func() error {
		recs, err := svc.notes.List(gctx)
		if err != nil {
			return errors.Wrap(err, "counting notes")
		}
		sum.Notes = len(recs)
		return nil
	})
	g.Go(func() error {
		recs, err := svc.emails.List(gctx)
		if err != nil {
			return errors.Wrap(err, "counting emails")
		}
		for i := range recs {
			if recs[i].IsUnread() {
				sum.Emails++
			}
		}
		return nil
	})
	g.Go(func() error {
		recs, err := svc.errands.List(gctx)
		if err != nil {
			return errors.Wrap(err, "counting errands")
		}
		for i := range recs {
			if recs[i].IsOpen() {
				sum.Errands++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return sum, nil
}
