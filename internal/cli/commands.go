// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/specialistvlad/hotunit/internal/app"
	"github.com/spf13/cobra"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func newListCommand(f *flags, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Preload the search path and list the units reachable by name",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			a := app.NewApp(errW, cfg)
			preload(cmd, a)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tGENERATION\tEXPORTS\tDIGEST")
			for _, e := range a.Registry().Units() {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%.12s\n", e.Name, e.Generation, strings.Join(e.Exports, ","), e.Digest)
			}
			return tw.Flush()
		},
	}
}

func newCallCommand(f *flags, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "call <name> <export> [input=value...]",
		Short: "Load one unit and print the value of an export as JSON",
		Long: `Load one unit from the search path and evaluate one of its exports.
Units not found on the search path are looked up among the built-in units.

Input values are parsed as JSON when possible and passed as strings
otherwise, so n=21 is a number and name=gopher is a string.`,
		Args: rangeArgs(2, -1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, export := args[0], args[1]
			inputs, err := parseInputs(args[2:])
			if err != nil {
				return err
			}

			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			a := app.NewApp(errW, cfg)

			// Units missing from the search path may still be built in.
			if _, err := a.Reload(cmd.Context(), name); err != nil && !errors.Is(err, app.ErrNotFetched) {
				return err
			}
			val, err := a.Call(cmd.Context(), name, export, inputs)
			if err != nil {
				return err
			}

			out, err := ctyjson.Marshal(val, val.Type())
			if err != nil {
				return fmt.Errorf("failed to encode result of %s.%s: %w", name, export, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

// parseInputs turns key=value arguments into unit inputs.
func parseInputs(args []string) (map[string]cty.Value, error) {
	inputs := make(map[string]cty.Value, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, usageError("invalid input %q: expected key=value", arg)
		}
		if _, dup := inputs[key]; dup {
			return nil, usageError("input %q given more than once", key)
		}
		inputs[key] = parseValue(raw)
	}
	return inputs, nil
}

func parseValue(raw string) cty.Value {
	b := []byte(raw)
	ty, err := ctyjson.ImpliedType(b)
	if err != nil {
		return cty.StringVal(raw)
	}
	val, err := ctyjson.Unmarshal(b, ty)
	if err != nil {
		return cty.StringVal(raw)
	}
	return val
}

func newServeCommand(f *flags, errW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Preload the search path and serve the health and introspection endpoints",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			if cfg.HealthcheckPort == 0 {
				return usageError("serve requires --healthcheck-port")
			}
			a := app.NewApp(errW, cfg)
			preload(cmd, a)
			return a.Serve(cmd.Context())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the hotunit version",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "hotunit %s\n", Version)
			return err
		},
	}
}
