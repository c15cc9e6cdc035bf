package emailsvc

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core"
)

type consoleService struct {
	logger        core.Logger
	disableOutput bool

	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService returns a transport that writes messages to the logger instead of delivering them.
func NewConsoleService(logger core.Logger) *consoleService {
	return &consoleService{logger: logger}
}

func (svc *consoleService) Send(ctx context.Context, msg *core.EmailMessage) (*core.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkMessage(msg); err != nil {
		return nil, err
	}

	id := newMessageID(msg.From.Address)
	body := new(strings.Builder)
	if err := writeMessage(body, msg, id, time.Now()); err != nil {
		return nil, errors.Wrap(err, "rendering email")
	}
	if !svc.disableOutput {
		svc.logger.Info("email message", body.String())
	}

	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()

	return &core.SendResult{Success: true, MessageID: "<" + id + ">", Response: "250 Message logged"}, nil
}

func (svc *consoleService) Verify(context.Context) error { return nil }

// SentMessages returns the messages sent so far.
func (svc *consoleService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.EmailMessage(nil), svc.sent...)
}

// ConsoleServiceMock is a silent console transport that can be told to fail.
type ConsoleServiceMock struct {
	*consoleService
	Err error
}

func NewConsoleServiceMock() *ConsoleServiceMock {
	return &ConsoleServiceMock{
		consoleService: &consoleService{disableOutput: true},
	}
}

func (svc *ConsoleServiceMock) Send(ctx context.Context, msg *core.EmailMessage) (*core.SendResult, error) {
	if svc.Err != nil {
		return nil, svc.Err
	}
	return svc.consoleService.Send(ctx, msg)
}

func (svc *ConsoleServiceMock) Verify(context.Context) error {
	return svc.Err
}
