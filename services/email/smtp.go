package emailsvc

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core"
)

type smtpService struct {
	host     string
	addr     string
	security string
	user     string
	password string
	logger   core.Logger
}

var _ core.EmailService = (*smtpService)(nil)

// NewSMTPService returns a transport delivering messages to an SMTP relay.
// conf.Security selects STARTTLS (default), implicit TLS or a plaintext connection;
// PLAIN authentication is used when credentials are set.
func NewSMTPService(conf core.EmailConfig, logger core.Logger) *smtpService {
	return &smtpService{
		host:     conf.Host,
		addr:     net.JoinHostPort(conf.Host, strconv.Itoa(conf.Port)),
		security: conf.Security,
		user:     conf.User,
		password: conf.Password,
		logger:   logger,
	}
}

func (svc *smtpService) connect(ctx context.Context) (*smtp.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		c   *smtp.Client
		err error
	)
	tlsConf := &tls.Config{ServerName: svc.host}
	switch svc.security {
	case core.SMTPSecurityNone:
		c, err = smtp.Dial(svc.addr)
	case core.SMTPSecurityTLS:
		c, err = smtp.DialTLS(svc.addr, tlsConf)
	default:
		c, err = smtp.DialStartTLS(svc.addr, tlsConf)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", svc.addr)
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.CommandTimeout = time.Until(deadline)
		c.SubmissionTimeout = time.Until(deadline)
	}

	if svc.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(sasl.NewPlainClient("", svc.user, svc.password)); err != nil {
				_ = c.Close()
				return nil, errors.Wrap(err, "authenticating")
			}
		}
	}
	return c, nil
}

func (svc *smtpService) Send(ctx context.Context, msg *core.EmailMessage) (*core.SendResult, error) {
	if err := checkMessage(msg); err != nil {
		return nil, err
	}

	c, err := svc.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.Mail(msg.From.Address, nil); err != nil {
		return nil, errors.Wrap(err, "MAIL FROM")
	}
	for _, rcpt := range msg.Recipients() {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return nil, errors.Wrapf(err, "RCPT TO %s", rcpt)
		}
	}

	w, err := c.Data()
	if err != nil {
		return nil, errors.Wrap(err, "DATA")
	}
	id := newMessageID(msg.From.Address)
	if err := writeMessage(w, msg, id, time.Now()); err != nil {
		_ = w.Close()
		return nil, err
	}
	// Close waits for the server's 250 reply to the message data
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "sending message")
	}

	if err := c.Quit(); err != nil {
		svc.logger.Warn("smtp QUIT failed", err)
	}
	return &core.SendResult{
		Success:   true,
		MessageID: "<" + id + ">",
		Response:  "250 Message accepted for delivery",
	}, nil
}

// Verify connects, authenticates and pings the server.
func (svc *smtpService) Verify(ctx context.Context) error {
	c, err := svc.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Noop(); err != nil {
		return errors.Wrap(err, "NOOP")
	}
	return c.Quit()
}
