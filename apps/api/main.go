package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	echoapi "github.com/trezcool/assistant/apps/api/echo"
	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/appointment"
	"github.com/trezcool/assistant/core/dashboard"
	"github.com/trezcool/assistant/core/email"
	"github.com/trezcool/assistant/core/errand"
	"github.com/trezcool/assistant/core/list"
	"github.com/trezcool/assistant/core/note"
	emailsvc "github.com/trezcool/assistant/services/email"
	logsvc "github.com/trezcool/assistant/services/logger"
	"github.com/trezcool/assistant/storage/database"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	// set up logger
	zl, err := logsvc.NewZapLogger(conf.Log, conf.Debug)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Close()

	// set up DB
	ctx := context.Background()
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	validate, translator := core.NewValidator()
	appointments := appointment.NewService(db, validate, translator)
	lists := list.NewService(db, validate, translator)
	notes := note.NewService(db, validate, translator)
	emails := email.NewRecords(db, validate, translator)
	errands := errand.NewService(db, validate, translator)

	mailSvc := emailsvc.New(conf, logger, reg)
	emailSvc := email.NewService(emails, mailSvc, conf.DefaultFromEmail().String(), logger)

	// =========================================================================
	// Initialize App

	logger.Info("Application initializing", map[string]interface{}{
		"env":       conf.Env,
		"engine":    conf.Database.Engine,
		"transport": conf.Email.Transport,
	})
	defer logger.Info("Application stopped")

	verifyCtx, cancelVerify := context.WithTimeout(ctx, 10*time.Second)
	if err := emailSvc.VerifyTransport(verifyCtx); err != nil {
		logger.Warn("email transport verification failed; sending emails may fail", map[string]interface{}{"error": err.Error()})
	}
	cancelVerify()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		Registry:       reg,
		AppointmentSvc: appointments,
		ListSvc:        lists,
		NoteSvc:        notes,
		EmailRecords:   emails,
		EmailSvc:       emailSvc,
		ErrandSvc:      errands,
		DashboardSvc:   dashboard.NewService(appointments, lists, notes, emails, errands),
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
