package emailsvc

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/assistant/core"
)

type instrumentedService struct {
	core.EmailService
	transport string
	sent      *prometheus.CounterVec
}

// WithMetrics counts the messages handed to svc by outcome ("success" or "failure").
func WithMetrics(svc core.EmailService, transport string, reg prometheus.Registerer) core.EmailService {
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_emails_sent_total",
		Help: "Outbound emails handed to the mail transport, by transport and outcome.",
	}, []string{"transport", "outcome"})
	if err := reg.Register(sent); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			sent = are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return &instrumentedService{EmailService: svc, transport: transport, sent: sent}
}

func (svc *instrumentedService) Send(ctx context.Context, msg *core.EmailMessage) (*core.SendResult, error) {
	res, err := svc.EmailService.Send(ctx, msg)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	svc.sent.WithLabelValues(svc.transport, outcome).Inc()
	return res, err
}
