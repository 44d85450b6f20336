// Package cmdparse builds declarative command-line interfaces. Commands are
// assembled from positional, option, flag, pass-thru and subcommand
// parameters, then parse argv into a Context that exposes the cast values
// and drives subcommand dispatch.
package cmdparse

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Main parses os.Args[1:] with cmd, runs what it selects, and returns the
// process exit code: 0 on success or help, 2 for usage and definition
// errors, 1 otherwise. Usage errors print the usage line and the error.
func Main(cmd *Command, settings ...Setting) int {
	ctx, err := cmd.Parse(os.Args[1:], settings...)
	if err == nil {
		err = ctx.runParsed()
	}
	if err == nil || errors.Is(err, ErrHelp) {
		return 0
	}
	w := io.Writer(os.Stderr)
	if ctx != nil {
		w = ctx.Stderr
	}
	if ctx != nil && IsUsageError(err) {
		fmt.Fprintln(w, ctx.Usage())
	}
	color.New(color.FgRed).Fprintln(w, err)
	return ExitCode(err)
}

// Get returns the named parameter's final value cast to T; ok reports
// whether a value existed with that type.
func Get[T any](ctx *Context, name string) (val T, ok bool) {
	val, ok = ctx.Value(name).(T)
	return val, ok
}
