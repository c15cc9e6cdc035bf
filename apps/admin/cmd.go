package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/assistant/core"
	"github.com/trezcool/assistant/core/appointment"
	"github.com/trezcool/assistant/core/dashboard"
	"github.com/trezcool/assistant/core/email"
	"github.com/trezcool/assistant/core/errand"
	"github.com/trezcool/assistant/core/list"
	"github.com/trezcool/assistant/core/note"
)

var errHelp = errors.New("help provided")

const cmdTimeout = time.Minute

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	db     core.DocumentStore
	out    io.Writer

	emailSvc     *email.Service
	dashboardSvc *dashboard.Service
}

func newCommandLine(conf *core.Config, logger core.Logger, db core.DocumentStore, mailer core.EmailService) *commandLine {
	validate, translator := core.NewValidator()
	appointments := appointment.NewService(db, validate, translator)
	lists := list.NewService(db, validate, translator)
	notes := note.NewService(db, validate, translator)
	emails := email.NewRecords(db, validate, translator)
	errands := errand.NewService(db, validate, translator)

	return &commandLine{
		conf:         conf,
		logger:       logger,
		db:           db,
		out:          os.Stdout,
		emailSvc:     email.NewService(emails, mailer, conf.DefaultFromEmail().String(), logger),
		dashboardSvc: dashboard.NewService(appointments, lists, notes, emails, errands),
	}
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Personal assistant administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		&cobra.Command{
			Use:   "migrate COMMAND [ARGS...]",
			Short: "Run database migrations",
			Long: `Run a migration command against the configured SQL database.

Commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version.`,
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					_ = cmd.Help()
					return errHelp
				}
				return cli.migrate(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "verify-mail",
			Short: "Check the outbound email transport",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := cli.emailSvc.VerifyTransport(cmd.Context()); err != nil {
					return errors.Wrapf(err, "verifying %s transport", cli.conf.Email.Transport)
				}
				fmt.Fprintf(cli.out, "%s transport is ready\n", cli.conf.Email.Transport)
				return nil
			},
		},
		&cobra.Command{
			Use:   "summary",
			Short: "Print the dashboard summary",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sum, err := cli.dashboardSvc.Summary(cmd.Context())
				if err != nil {
					return err
				}
				return cli.printJSON(sum)
			},
		},
		&cobra.Command{
			Use:   "send-email ID",
			Short: "Send a stored email",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := cli.emailSvc.Send(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return cli.printJSON(res)
			},
		},
	)
	return root
}

func (cli *commandLine) run(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
