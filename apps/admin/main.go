package main

import (
	"context"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/assistant/core"
	emailsvc "github.com/trezcool/assistant/services/email"
	logsvc "github.com/trezcool/assistant/services/logger"
	"github.com/trezcool/assistant/storage/database"
)

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	zl, err := logsvc.NewZapLogger(conf.Log, conf.Debug)
	if err != nil {
		log.Fatalf("setting up logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// set up DB
	db, err := database.Open(context.Background(), conf)
	errAndDie(zl, err)
	defer db.Close()

	// start CLI
	cli := newCommandLine(conf, zl, db, emailsvc.New(conf, zl, prometheus.NewRegistry()))
	if err := cli.run(os.Args[1:]); err != nil {
		if err != errHelp {
			zl.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal("setting up database", err)
	}
}
