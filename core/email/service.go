package email

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/assistant/core"
)

const (
	msgAlreadySent = "Email has already been sent"
	msgSent        = "Email sent successfully"
)

// SendResponse is returned after a successful dispatch.
type SendResponse struct {
	Message     string           `json:"message"`
	Email       *Email           `json:"email"`
	EmailResult *core.SendResult `json:"emailResult"`
}

// Service dispatches stored emails through the outbound transport.
type Service struct {
	records     *Records
	mailer      core.EmailService
	defaultFrom string
	logger      core.Logger
}

func NewService(records *Records, mailer core.EmailService, defaultFrom string, logger core.Logger) *Service {
	return &Service{
		records:     records,
		mailer:      mailer,
		defaultFrom: defaultFrom,
		logger:      logger,
	}
}

// Send delivers the email with the given id once.
// The record is claimed (isSent false -> true) before the transport is invoked, so concurrent sends
// of the same email result in exactly one delivery. A failed delivery releases the claim and leaves
// the record as it was.
func (svc *Service) Send(ctx context.Context, id string) (*SendResponse, error) {
	eml, err := svc.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if eml.IsSent {
		return nil, core.NewConflictError(msgAlreadySent)
	}

	claimed, err := svc.records.SwapFlag(ctx, id, sentFlag, false, true)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// lost the race; report the current state
		if _, err := svc.records.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, core.NewConflictError(msgAlreadySent)
	}

	res, err := svc.mailer.Send(ctx, eml.Message(svc.defaultFrom))
	if err != nil {
		svc.release(ctx, id)
		return nil, core.NewDeliveryError(err)
	}

	now := svc.records.Now()
	eml.IsSent = true
	eml.SentAt = null.TimeFrom(now)
	eml.Status = StatusResponded
	if err := svc.records.Save(ctx, eml); err != nil {
		svc.logger.Error("email delivered but its record could not be updated", err, map[string]interface{}{"id": id})
		return nil, errors.Wrap(err, "saving sent email")
	}

	return &SendResponse{
		Message:     msgSent,
		Email:       eml,
		EmailResult: res,
	}, nil
}

func (svc *Service) release(ctx context.Context, id string) {
	if _, err := svc.records.SwapFlag(context.WithoutCancel(ctx), id, sentFlag, true, false); err != nil {
		svc.logger.Error("releasing email send claim", err, map[string]interface{}{"id": id})
	}
}

// VerifyTransport checks the outbound transport configuration.
func (svc *Service) VerifyTransport(ctx context.Context) error {
	return svc.mailer.Verify(ctx)
}
