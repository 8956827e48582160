// Package cli holds the circles command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/circles/internal/api"
	"github.com/idilsaglam/circles/internal/auth"
	"github.com/idilsaglam/circles/internal/circles"
	"github.com/idilsaglam/circles/internal/config"
	"github.com/idilsaglam/circles/internal/logging"
	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/notify"
	"github.com/idilsaglam/circles/internal/routes"
	"github.com/idilsaglam/circles/internal/tui"
	"github.com/idilsaglam/circles/internal/ui"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitUsage  = 2
)

// Remote is what the commands need from the circle service.
type Remote interface {
	circles.Service
	circles.Uploader
	Get(ctx context.Context, id string) (model.Circle, error)
}

// errReported marks a failure the user was already told about.
var errReported = errors.New("reported")

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// App carries what every command shares. Remote may be preset; otherwise
// an HTTP client is built from config on first use.
type App struct {
	Out, Err io.Writer
	Remote   Remote

	configPath string
	cfg        config.Config
	log        *zap.Logger
}

// Execute runs the command tree against the process's stdio and returns an
// exit code (0 ok, 1 error, 2 usage).
func Execute(ctx context.Context, args []string) int {
	a := &App{Out: os.Stdout, Err: os.Stderr}
	return a.Run(ctx, args)
}

// Run executes args and maps the outcome to an exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.Root()
	root.SetArgs(args)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	err := root.ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	return a.exitCode(err)
}

func (a *App) exitCode(err error) int {
	var ue *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errReported):
		return ExitFailed
	case errors.As(err, &ue):
		ui.Fail(a.Err, ue.Error())
		fmt.Fprintln(a.Err, ui.Current().Muted.Render("Run `circles --help` for usage."))
		return ExitUsage
	}
	ui.Fail(a.Err, err.Error())
	return ExitFailed
}

// Root builds the command tree.
func (a *App) Root() *cobra.Command {
	var route string
	root := &cobra.Command{
		Use:           "circles",
		Short:         "Manage circles from the terminal",
		Long:          "circles opens the interactive manager when run without a subcommand.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          noArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// the TUI owns the terminal, so it logs to a file
			return a.setup(cmd == cmd.Root())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if route == "" {
				route = a.cfg.UI.Route
			}
			return a.runTUI(cmd.Context(), route)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/circles/config.toml)")
	root.Flags().StringVar(&route, "route", "", "path to open, e.g. /list")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return &usageError{err: err} })

	root.AddCommand(
		a.lsCmd(),
		a.addCmd(),
		a.updateCmd(),
		a.rmCmd(),
		a.showCmd(),
		a.exportCmd(),
		a.authCmd(),
	)
	return root
}

func (a *App) setup(toFile bool) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)

	log, err := logging.New(cfg.Log, toFile)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *App) remote() (Remote, error) {
	if a.Remote != nil {
		return a.Remote, nil
	}
	c, err := api.New(a.cfg.API.BaseURL,
		api.WithToken(auth.Bearer),
		api.WithTimeout(a.cfg.API.Timeout),
		api.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}
	a.Remote = c
	return c, nil
}

// controller wires a page controller that reports to n.
func (a *App) controller(n notify.Notifier) (*circles.Controller, Remote, error) {
	r, err := a.remote()
	if err != nil {
		return nil, nil, err
	}
	return circles.NewController(r, r, n, a.log), r, nil
}

func (a *App) console() ui.Console { return ui.Console{Out: a.Out, Err: a.Err} }

func (a *App) runTUI(ctx context.Context, route string) error {
	ch := notify.NewChannel(32)
	ctrl, _, err := a.controller(ch)
	if err != nil {
		return err
	}
	a.log.Info("starting tui", zap.String("route", route), zap.String("api", a.cfg.API.BaseURL))
	return tui.Run(ctx, tui.Options{
		Controller: ctrl,
		Toasts:     ch.C(),
		Routes:     routes.Default(),
		Start:      route,
		PageSize:   a.cfg.UI.PageSize,
		Log:        a.log,
	})
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%s: unexpected argument %q", cmd.CommandPath(), args[0])
	}
	return nil
}

func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s %s", cmd.CommandPath(), names)
		}
		return nil
	}
}

func minArgs(n int, names string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usagef("usage: %s %s", cmd.CommandPath(), names)
		}
		return nil
	}
}

func maxArgs(n int, names string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return usagef("usage: %s %s", cmd.CommandPath(), names)
		}
		return nil
	}
}
