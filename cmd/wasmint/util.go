package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/hokaccha/go-prettyjson"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/wasmint/wasmint/errz"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminalOutput() bool {
	stdout := os.Stdout.Fd()
	return isatty.IsTerminal(stdout) || isatty.IsCygwinTerminal(stdout)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags(v *viper.Viper) {
	if v.GetBool("no-color") || !isTerminalOutput() {
		color.NoColor = true
	}
}

// getOutputJSON encodes v as indented JSON, colored unless color output is
// disabled.
func getOutputJSON(v any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}

// newLogger returns a console logger writing to w at the configured level.
func newLogger(v *viper.Viper, w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q", v.GetString("log-level"))
	}
	writer := zerolog.ConsoleWriter{Out: w, NoColor: color.NoColor}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}

// printErrors writes each error in err on its own line. Structured errors
// include the instruction path.
func printErrors(w io.Writer, err error) {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		printError(w, err)
		return
	}
	for _, e := range merr.Errors {
		printError(w, e)
	}
}

func printError(w io.Writer, err error) {
	if se, ok := errz.AsStructured(err); ok {
		fmt.Fprint(w, red(se.FriendlyErrorMessage()))
		return
	}
	fmt.Fprintln(w, red(err.Error()))
}
