package cmdparse

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrHelp is returned by Run after the help action has printed.
var ErrHelp = errors.New("help requested")

// ParameterDefinitionError reports invalid parameter declarations (bad option
// strings, bad nargs, constructor misuse). Raised by panic at declaration
// time, the way the standard flag package treats definition mistakes.
type ParameterDefinitionError struct {
	Msg string
}

func (e *ParameterDefinitionError) Error() string { return e.Msg }

func defErr(format string, args ...interface{}) *ParameterDefinitionError {
	return &ParameterDefinitionError{Msg: fmt.Sprintf(format, args...)}
}

// CommandDefinitionError reports structurally invalid command configurations.
// Problems that need the full command chain surface from Finalize rather than
// at declaration.
type CommandDefinitionError struct {
	Msg string
}

func (e *CommandDefinitionError) Error() string { return e.Msg }

func cmdDefErr(format string, args ...interface{}) *CommandDefinitionError {
	return &CommandDefinitionError{Msg: fmt.Sprintf(format, args...)}
}

// ShortConflict pairs a multi-character short form with the registered short
// forms its characters could otherwise spell.
type ShortConflict struct {
	Param  *Param
	Others []*Param
}

// AmbiguousShortForm is returned by Finalize in strict combo mode when a
// multi-character short option could be mistaken for a combination of other
// registered short options.
type AmbiguousShortForm struct {
	Conflicts []ShortConflict
}

func (e *AmbiguousShortForm) Error() string {
	lines := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		lines[i] = fmt.Sprintf(
			"ambiguous short form for %s: it conflicts with %s",
			c.Param.UsageStr(), paramUsageList(c.Others))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// AmbiguousParseTree is returned by Finalize when two positional/subcommand
// choice paths could consume the same token sequence.
type AmbiguousParseTree struct {
	Msg string
}

func (e *AmbiguousParseTree) Error() string { return e.Msg }

// usageError marks errors caused by the parsed input rather than by the
// command's definition.
type usageError interface {
	error
	usageError()
}

// NoSuchOption reports an unrecognized or malformed option token.
type NoSuchOption struct {
	Msg string
}

func (e *NoSuchOption) Error() string { return e.Msg }
func (e *NoSuchOption) usageError()   {}

// ParamUsageError reports improper use of a known parameter.
type ParamUsageError struct {
	Param *Param
	Msg   string
	Err   error
}

func (e *ParamUsageError) Error() string { return argPrefix(e.Param) + e.Msg }
func (e *ParamUsageError) Unwrap() error { return e.Err }
func (e *ParamUsageError) usageError()   {}

// BadArgument reports a value that failed casting or validation.
type BadArgument struct {
	Param *Param
	Msg   string
	Err   error
}

func (e *BadArgument) Error() string { return argPrefix(e.Param) + e.Msg }
func (e *BadArgument) Unwrap() error { return e.Err }
func (e *BadArgument) usageError()   {}

// InvalidChoice reports a value outside a parameter's fixed choice set.
type InvalidChoice struct {
	Param   *Param
	Value   string
	Choices []string
}

func (e *InvalidChoice) Error() string {
	return fmt.Sprintf("%sinvalid choice: %q (choose from: %s)",
		argPrefix(e.Param), e.Value, strings.Join(e.Choices, ", "))
}
func (e *InvalidChoice) usageError() {}

// MissingArgument reports a single required parameter with no value.
type MissingArgument struct {
	Param *Param
	Msg   string
}

func (e *MissingArgument) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "missing required argument value"
	}
	return argPrefix(e.Param) + msg
}
func (e *MissingArgument) usageError() {}

// ParamsMissing aggregates every required parameter left unfilled, so one
// failed parse reports the complete picture.
type ParamsMissing struct {
	Params []*Param
}

func (e *ParamsMissing) Error() string {
	return "arguments missing - the following arguments are required: " + paramUsageList(e.Params)
}
func (e *ParamsMissing) usageError() {}

// ParamConflict reports mutually exclusive parameters provided together.
type ParamConflict struct {
	Params []*Param
}

func (e *ParamConflict) Error() string {
	return "argument conflict - the following arguments cannot be combined: " + paramUsageList(e.Params)
}
func (e *ParamConflict) usageError() {}

// AmbiguousCombo reports a short-option cluster that could match registered
// short forms in more than one way.
type AmbiguousCombo struct {
	Combo   string
	Matches []*Param
}

func (e *AmbiguousCombo) Error() string {
	return fmt.Sprintf("part of argument=-%s may match multiple parameters: %s",
		e.Combo, paramUsageList(e.Matches))
}
func (e *AmbiguousCombo) usageError() {}

func argPrefix(p *Param) string {
	if p == nil {
		return ""
	}
	return "argument " + p.UsageStr() + ": "
}

func paramUsageList(params []*Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.UsageStr()
	}
	return strings.Join(parts, ", ")
}

// IsUsageError reports whether err stems from the parsed input rather than
// from the command's definition or an unexpected failure.
func IsUsageError(err error) bool {
	for err != nil {
		if _, ok := err.(usageError); ok {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func isDefinitionError(err error) bool {
	var pd *ParameterDefinitionError
	var cd *CommandDefinitionError
	var sf *AmbiguousShortForm
	var pt *AmbiguousParseTree
	return errors.As(err, &pd) || errors.As(err, &cd) || errors.As(err, &sf) || errors.As(err, &pt)
}

// ExitCode maps an error from Parse or Run to a process exit code: 0 for nil
// or help, 2 for usage and definition errors, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrHelp):
		return 0
	case IsUsageError(err), isDefinitionError(err):
		return 2
	default:
		return 1
	}
}
