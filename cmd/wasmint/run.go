package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wasmint/wasmint"
	"github.com/wasmint/wasmint/object"
)

// errReported is returned after the error has been printed.
var errReported = errors.New("execution failed")

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Call a function of a module and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandler(cmd, v, args[0])
		},
	}
	flags := cmd.Flags()
	flags.StringP("func", "f", "main", "Function to call")
	flags.StringArrayP("arg", "a", nil, "Argument value, repeat for each parameter")
	flags.Int("max-depth", 0, "Maximum instruction nesting depth (0 for the default)")
	flags.Duration("timeout", 0, "Abort execution after this duration (0 for no limit)")
	flags.StringP("output", "o", "text", "Output format: text or json")
	v.BindPFlag("func", flags.Lookup("func"))
	v.BindPFlag("max-depth", flags.Lookup("max-depth"))
	v.BindPFlag("timeout", flags.Lookup("timeout"))
	return cmd
}

func runHandler(cmd *cobra.Command, v *viper.Viper, path string) error {
	logger, err := newLogger(v, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format: %s", format)
	}
	module, err := wasmint.LoadFile(path)
	if err != nil {
		printErrors(cmd.ErrOrStderr(), err)
		return errReported
	}

	name := v.GetString("func")
	texts, _ := cmd.Flags().GetStringArray("arg")
	args, err := wasmint.ParseArgs(module, name, texts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if timeout := v.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := []wasmint.Option{wasmint.WithLogger(logger)}
	if depth := v.GetInt("max-depth"); depth > 0 {
		opts = append(opts, wasmint.WithMaxDepth(depth))
	}
	result, err := wasmint.Call(ctx, module, name, args, opts...)
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
		return errReported
	}
	output, err := getOutput(result, format)
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output)
	}
	return nil
}

// getOutput renders a call result. Void results print nothing as text and
// null as JSON.
func getOutput(result object.Value, format string) (string, error) {
	if format == "json" {
		output, err := getOutputJSON(result.Interface())
		if err != nil {
			return "", err
		}
		return string(output), nil
	}
	if result == (object.Value{}) {
		return "", nil
	}
	return green(fmt.Sprint(result.Interface())), nil
}
