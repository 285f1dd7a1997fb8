package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/target/paystream-client/config"
	"github.com/target/paystream-client/internal/bootstrap"
	apperrors "github.com/target/paystream-client/internal/errors"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx      context.Context
	Logger   *slog.Logger
	Config   config.AppConfig
	Services *bootstrap.ServiceContainer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// usageError marks failures caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	os.Exit(code) //nolint:forbidigo // CLI must propagate the command status to the shell
}

// run executes one command and returns the process exit status:
// 0 on success, 1 when the command fails and 2 on usage errors.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		_ = printUsage(stdout)
		return 2
	}

	cmdName := args[0]
	if cmdName == "help" || cmdName == "-h" || cmdName == "--help" {
		_ = printUsage(stdout)
		return 0
	}
	cmd, ok := commands()[cmdName]
	if !ok {
		_ = writef(stderr, "unknown command %q\n\n", cmdName)
		_ = printUsage(stderr)
		return 2
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		_ = writef(stderr, "Error: load config: %v\n", err)
		return 1
	}
	logger := bootstrap.NewLogger(stderr, cfg.Observability.Logging)

	services, err := bootstrap.Open(ctx, &cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "open services", "error", err)
		_ = writef(stderr, "Error: %s\n", apperrors.UserMessage(err))
		return 1
	}
	defer func() {
		if cerr := services.Close(); cerr != nil {
			logger.WarnContext(ctx, "close services", "error", cerr)
		}
	}()

	cmdCtx := &commandContext{
		Ctx:      ctx,
		Logger:   logger,
		Config:   cfg,
		Services: services,
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
	}
	return exitCode(cmdCtx, cmdName, cmd.run(cmdCtx, args[1:]))
}

func exitCode(ctx *commandContext, cmdName string, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	var uerr usageError
	if errors.As(err, &uerr) {
		_ = writef(ctx.Stderr, "%s: %v\n", cmdName, uerr.err)
		return 2
	}
	ctx.Logger.DebugContext(ctx.Ctx, "command failed", "command", cmdName, "error", err)
	_ = writef(ctx.Stderr, "Error: %s\n", apperrors.UserMessage(err))
	return 1
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in and store the session",
			run:         runLogin,
		},
		"signup": {
			name:        "signup",
			description: "Create an account",
			run:         runSignup,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session",
			run:         runWhoami,
		},
		"view": {
			name:        "view",
			description: "Show the dashboard the session resolves to",
			run:         runView,
		},
		"sync": {
			name:        "sync",
			description: "Fetch every dataset the session may see",
			run:         runSync,
		},
		"stats": {
			name:        "stats",
			description: "Show payroll totals (admin)",
			run:         runStats,
		},
		"users": {
			name:        "users",
			description: "List users (admin)",
			run:         runUsers,
		},
		"expenses": {
			name:        "expenses",
			description: "List expense claims",
			run:         runExpenses,
		},
		"slips": {
			name:        "slips",
			description: "List salary slips (employee)",
			run:         runSlips,
		},
		"issue-slip": {
			name:        "issue-slip",
			description: "Issue a salary slip to an employee (admin)",
			run:         runIssueSlip,
		},
		"submit-expense": {
			name:        "submit-expense",
			description: "File an expense claim (employee)",
			run:         runSubmitExpense,
		},
		"approve": {
			name:        "approve",
			description: "Approve a pending expense (admin)",
			run:         runApprove,
		},
		"reject": {
			name:        "reject",
			description: "Reject a pending expense (admin)",
			run:         runReject,
		},
		"download": {
			name:        "download",
			description: "Download a salary slip PDF",
			run:         runDownload,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: paystream <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	for _, name := range slices.Sorted(maps.Keys(cmds)) {
		c := cmds[name]
		if err := writef(w, "  %-16s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

// newFlagSet returns a flag set whose parse errors are reported as usage errors.
func newFlagSet(ctx *commandContext, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(ctx.Stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err: err}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
