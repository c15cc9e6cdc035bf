package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/appointment"
	"github.com/trezcool/assistant/core/dashboard"
	"github.com/trezcool/assistant/core/email"
	"github.com/trezcool/assistant/core/errand"
	"github.com/trezcool/assistant/core/list"
	"github.com/trezcool/assistant/core/note"
)

const healthMessage = "Personal Assistant API is running"

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool
		// Registry receives the HTTP metrics and is served on /metrics.
		Registry       *prometheus.Registry

		AppointmentSvc *appointment.Service
		ListSvc        *list.Service
		NoteSvc        *note.Service
		EmailRecords   *email.Records
		EmailSvc       *email.Service
		ErrandSvc      *errand.Service
		DashboardSvc   *dashboard.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	if s.opts.Registry == nil {
		s.opts.Registry = prometheus.NewRegistry()
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf
	debug := conf.Debug

	s.app.HideBanner = true
	s.app.HidePort = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.CORS())
	if conf.BodyLimit != "" {
		s.app.Use(middleware.BodyLimit(conf.BodyLimit))
	}
	if !s.opts.DisableReqLogs {
		s.app.Use(requestLogger(s.opts.Logger))
	}
	s.app.Use(newHTTPMetrics(s.opts.Registry).middleware())
	// do not recover in DEV|TEST mode
	if !(debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = debug

	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{})))

	g := s.app.Group("/api")
	g.GET("/health", health)

	registerRecordAPI[appointment.Appointment](g, "/appointments", s.opts.AppointmentSvc)
	registerRecordAPI[list.List](g, "/lists", s.opts.ListSvc)
	registerRecordAPI[note.Note](g, "/notes", s.opts.NoteSvc)
	registerEmailAPI(g, s.opts.EmailRecords, s.opts.EmailSvc)
	registerRecordAPI[errand.Errand](g, "/errands", s.opts.ErrandSvc)
	registerDashboardAPI(g, s.opts.DashboardSvc)
}

func (s *server) Start() {
	s.opts.Logger.Info("API listening", map[string]interface{}{"address": s.opts.Conf.Address()})
	if err := s.app.Start(s.opts.Conf.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Stop(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok", "message": healthMessage})
}
