// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/hotunit/internal/app"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// flags holds the persistent flag values shared by every subcommand.
type flags struct {
	configFile      string
	searchPath      string
	logLevel        string
	logFormat       string
	healthcheckPort int
	preload         []string
}

// NewRootCommand builds the hotunit command tree. Command output goes to
// outW; logs go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "hotunit",
		Short: "hotunit - a hot-reloading code unit registry",
		Long: `hotunit loads HCL unit manifests from a search path into a registry that
supports reloading a unit under the same name without restarting.

Units live at <search-path>/<dotted/name/as/dirs>.unit, so the unit
"greeter.Hello" is read from greeter/Hello.unit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "Config file (.hcl, .toml, .yaml or .yml).")
	pf.StringVarP(&f.searchPath, "path", "p", "", "Search path units are loaded from.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	pf.StringSliceVar(&f.preload, "preload", nil, "Units to preload. Defaults to every unit under the search path.")

	root.AddCommand(
		newListCommand(f, errW),
		newCallCommand(f, errW),
		newServeCommand(f, errW),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree against args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func rangeArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || (max >= 0 && len(args) > max) {
			return usageError("%s: wrong number of arguments\nUsage: %s", cmd.CommandPath(), cmd.UseLine())
		}
		return nil
	}
}

// config merges the config file, if any, with the flags the user set
// explicitly. Flags win.
func (f *flags) config(cmd *cobra.Command) (*app.Config, error) {
	var cfg app.Config
	if f.configFile != "" {
		loaded, err := app.LoadConfigFile(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("path") {
		cfg.SearchPath = f.searchPath
	}
	if changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = f.logFormat
	}
	if changed("healthcheck-port") {
		cfg.HealthcheckPort = f.healthcheckPort
	}
	if changed("preload") {
		cfg.Preload = f.preload
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return validated, nil
}

// preload loads the configured units, logging failures instead of
// returning them so one broken unit does not take the others down.
func preload(cmd *cobra.Command, a *app.App) {
	if _, err := a.Preload(cmd.Context()); err != nil {
		a.Logger().Warn("Some units failed to preload.", "error", err)
	}
}
