package emailsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/trezcool/assistant/core"
)

var (
	host           = "https://api.sendgrid.com"
	endpoint       = "/v3/mail/send"
	scopesEndpoint = "/v3/scopes"

	sendgridAPIFunc = sendgrid.API // mockable
)

type sendgridService struct {
	key string
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(key string) *sendgridService {
	return &sendgridService{key: key}
}

func (svc sendgridService) prepare(msg *core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(svc.getSGEmail(to))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.getSGEmail(msg.From))
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.TextContent),
		sgmail.NewContent("text/html", msg.HTMLContent),
	)
	return m
}

func (svc sendgridService) getSGEmail(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}

func (svc sendgridService) Send(ctx context.Context, msg *core.EmailMessage) (*core.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkMessage(msg); err != nil {
		return nil, err
	}

	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := sendgridAPIFunc(req)
	if err != nil {
		return nil, errors.Wrap(err, "sending email")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, errors.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}

	var msgID string
	if vals := res.Headers["X-Message-Id"]; len(vals) > 0 {
		msgID = vals[0]
	}
	return &core.SendResult{
		Success:   true,
		MessageID: msgID,
		Response:  fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode)),
	}, nil
}

// Verify checks that the API key is accepted.
func (svc sendgridService) Verify(ctx context.Context) error {
	if svc.key == "" {
		return errors.New("sendgrid API key not set")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	req := sendgrid.GetRequest(svc.key, scopesEndpoint, host)
	req.Method = http.MethodGet
	res, err := sendgridAPIFunc(req)
	if err != nil {
		return errors.Wrap(err, "checking API key")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("checking API key - status: %d", res.StatusCode)
	}
	return nil
}
