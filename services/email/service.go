// Package emailsvc holds the outbound mail transports.
package emailsvc

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/assistant/core"
)

// New returns the transport selected by the configuration.
func New(conf *core.Config, logger core.Logger, reg prometheus.Registerer) core.EmailService {
	var svc core.EmailService
	switch conf.Email.Transport {
	case core.TransportSendgrid:
		svc = NewSendgridService(conf.Email.SendgridAPIKey)
	case core.TransportConsole:
		svc = NewConsoleService(logger)
	default:
		svc = NewSMTPService(conf.Email, logger)
	}
	return WithMetrics(svc, conf.Email.Transport, reg)
}
