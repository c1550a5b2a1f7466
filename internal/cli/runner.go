package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/ui"
	"github.com/idilsaglam/tada/internal/viewmodel"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitFail  = 1
	ExitUsage = 2
)

// Options carries the streams the runner writes to. Nil means the process
// streams.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
}

// env is what every subcommand gets once configuration is resolved.
type env struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
	logger *logging.Logger
	ctrl   *viewmodel.Controller
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	stdout, stderr := opt.Stdout, opt.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	cfg, err := config.Load(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			PrintHelp(stdout, fs)
			return ExitOK
		}
		ui.Fail(stderr, err.Error())
		return ExitUsage
	}
	ui.SetTheme(cfg.Theme)

	rest := fs.Args()
	cmd, a := "ui", rest
	if len(rest) > 0 {
		cmd, a = rest[0], rest[1:]
	}

	e := &env{cfg: cfg, stdout: stdout, stderr: stderr}

	// Commands that never talk to the API.
	switch cmd {
	case "help":
		PrintHelp(stdout, fs)
		return ExitOK
	case "config":
		return doConfig(e, a)
	case "ui", "ls", "add", "done", "rm":
	default:
		ui.Fail(stderr, "unknown subcommand: "+cmd)
		fmt.Fprintln(stderr)
		PrintHelp(stderr, fs)
		return ExitUsage
	}

	logger, err := logging.Open(cfg.LogOptions())
	if err != nil {
		ui.Fail(stderr, "log: "+err.Error())
		return ExitFail
	}
	defer logger.Close()
	e.logger = logger

	client, err := api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout.Duration),
		api.WithLogger(logger.Logger),
	)
	if err != nil {
		ui.Fail(stderr, err.Error())
		return ExitUsage
	}
	e.ctrl = viewmodel.New(client, viewmodel.WithLogger(logger.Logger))
	logger.Debug("starting", "cmd", cmd, "api", client.BaseURL(), "config", cfg.Files)

	switch cmd {
	case "ls":
		return doList(ctx, e, a)
	case "add":
		return doAdd(ctx, e, a)
	case "done":
		return doToggle(ctx, e, a)
	case "rm":
		return doRemove(ctx, e, a)
	}
	return doUI(ctx, e, a)
}

// PrintHelp writes the top-level usage, including the global flags on fs.
func PrintHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `tada - a terminal client for a todo API

Usage:
  tada [global flags] [subcommand] [args]

Subcommands:
  ui                  Interactive list (default)
  ls [--group]        Print the list; --group splits pending and done
  add <task...>       Add a task (the task can be multiple words)
  done <id>           Toggle the completed flag of a task
  rm <id>             Delete a task
  config show         Print the effective configuration
  config init         Write a default config file (--force to overwrite)
  help                Show this help

Global flags:
%s
Examples:
  tada add "Buy milk"
  tada ls
  tada done 2
  tada --api-url http://todo.lan:5000/api rm 3
`, fs.FlagUsages())
}

// subFlags builds a flag set for a subcommand. Parse errors are reported by
// parseSub, so pflag itself stays quiet.
func subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseSub parses args into fs. It returns a non-negative exit code when the
// caller should stop: 0 after printing help, 2 on a usage error.
func parseSub(e *env, fs *flag.FlagSet, usage string, args []string) int {
	err := fs.Parse(args)
	if err == nil {
		return -1
	}
	if errors.Is(err, flag.ErrHelp) {
		subHelp(e.stdout, fs, usage)
		return ExitOK
	}
	ui.Fail(e.stderr, fs.Name()+": "+err.Error())
	subHelp(e.stderr, fs, usage)
	return ExitUsage
}

func subHelp(w io.Writer, fs *flag.FlagSet, usage string) {
	fmt.Fprintln(w, "Usage: tada", usage)
	if fs.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		fmt.Fprint(w, fs.FlagUsages())
	}
}

func usageError(e *env, usage string) int {
	ui.Fail(e.stderr, "usage: tada "+usage)
	return ExitUsage
}

func joinArgs(a []string) string {
	return strings.Join(a, " ")
}
