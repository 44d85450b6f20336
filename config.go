package cmdparse

import "io"

// OptionNameMode controls how long option strings are derived from parameter
// names. The derived form is registered in addition to any explicit ones.
type OptionNameMode int

const (
	// OptionNameDash derives kebab-case forms: name "foo_bar" gives --foo-bar.
	OptionNameDash OptionNameMode = iota
	// OptionNameUnderscore derives snake_case forms: --foo_bar.
	OptionNameUnderscore
	// OptionNameBoth registers both the dash and underscore forms.
	OptionNameBoth
	// OptionNameExplicit disables derivation; only explicit forms register.
	OptionNameExplicit
)

// ComboMode controls how ambiguous short-option clusters are handled.
type ComboMode int

const (
	// ComboPermissive tolerates multi-character shorts but rejects clusters
	// that embed one ambiguously at parse time.
	ComboPermissive ComboMode = iota
	// ComboIgnore resolves every cluster by first match without complaint.
	ComboIgnore
	// ComboStrict rejects ambiguous short form sets when the command is
	// finalized, before any argv is seen.
	ComboStrict
)

// DashMode is a parameter's policy for values that begin with a dash.
type DashMode int

const (
	// DashNumeric accepts dash-prefixed values only when they parse as
	// negative numbers.
	DashNumeric DashMode = iota
	DashAlways
	DashNever
)

// Config carries parse-behavior settings. Fields left unset defer to the
// parent command's config, then to library defaults; resolution happens per
// invocation, so a Context override never mutates the command.
type Config struct {
	addHelp             *bool
	ignoreUnknown       *bool
	allowMissing        *bool
	allowBacktrack      *bool
	rejectAmbiguousPos  *bool
	shortCombos         *ComboMode
	optionNames         *OptionNameMode
	usageColumn         *int
	termWidth           *int
	sources             []ValueSource
	stdout              io.Writer
	stderr              io.Writer
}

// Setting applies one configuration value; usable both when constructing a
// Command and per Parse/Run invocation.
type Setting func(*Config)

// AddHelp controls whether --help/-h is added automatically. Default true.
func AddHelp(v bool) Setting { return func(c *Config) { c.addHelp = &v } }

// IgnoreUnknown keeps unrecognized tokens in Context.Remaining instead of
// failing the parse. Default false.
func IgnoreUnknown(v bool) Setting { return func(c *Config) { c.ignoreUnknown = &v } }

// AllowMissing suppresses the missing-required check. Default false.
func AllowMissing(v bool) Setting { return func(c *Config) { c.allowMissing = &v } }

// AllowBacktrack controls whether the parser may take tokens back from an
// already-satisfied variable-arity parameter to feed a starved positional.
// Default true.
func AllowBacktrack(v bool) Setting { return func(c *Config) { c.allowBacktrack = &v } }

// RejectAmbiguousPosCombos enables parse-tree validation of the positional
// and subcommand choice structure when the command is finalized. Default
// false.
func RejectAmbiguousPosCombos(v bool) Setting {
	return func(c *Config) { c.rejectAmbiguousPos = &v }
}

// ShortCombos selects the ambiguity mode for combined short options.
// Default ComboPermissive.
func ShortCombos(m ComboMode) Setting { return func(c *Config) { c.shortCombos = &m } }

// OptionNames selects how long forms derive from parameter names.
// Default OptionNameDash.
func OptionNames(m OptionNameMode) Setting { return func(c *Config) { c.optionNames = &m } }

// UsageColumn sets the column where help text starts in the parameter list.
// Default 30.
func UsageColumn(w int) Setting { return func(c *Config) { c.usageColumn = &w } }

// TerminalWidth overrides detected terminal width for help wrapping.
func TerminalWidth(w int) Setting { return func(c *Config) { c.termWidth = &w } }

// WithSources appends defaults providers consulted for parameters that got
// no CLI or environment value, in order.
func WithSources(srcs ...ValueSource) Setting {
	return func(c *Config) { c.sources = append(c.sources, srcs...) }
}

// Output redirects help and other action-flag output. Default os.Stdout.
func Output(w io.Writer) Setting { return func(c *Config) { c.stdout = w } }

// ErrOutput redirects error output written by Main. Default os.Stderr.
func ErrOutput(w io.Writer) Setting { return func(c *Config) { c.stderr = w } }

// configChain resolves settings from the most specific layer that set them:
// invocation overrides, then the owning command, then its ancestors.
type configChain []*Config

func (cc configChain) addHelp() bool {
	for _, c := range cc {
		if c != nil && c.addHelp != nil {
			return *c.addHelp
		}
	}
	return true
}

func (cc configChain) ignoreUnknown() bool {
	for _, c := range cc {
		if c != nil && c.ignoreUnknown != nil {
			return *c.ignoreUnknown
		}
	}
	return false
}

func (cc configChain) allowMissing() bool {
	for _, c := range cc {
		if c != nil && c.allowMissing != nil {
			return *c.allowMissing
		}
	}
	return false
}

func (cc configChain) allowBacktrack() bool {
	for _, c := range cc {
		if c != nil && c.allowBacktrack != nil {
			return *c.allowBacktrack
		}
	}
	return true
}

func (cc configChain) rejectAmbiguousPos() bool {
	for _, c := range cc {
		if c != nil && c.rejectAmbiguousPos != nil {
			return *c.rejectAmbiguousPos
		}
	}
	return false
}

func (cc configChain) shortCombos() ComboMode {
	for _, c := range cc {
		if c != nil && c.shortCombos != nil {
			return *c.shortCombos
		}
	}
	return ComboPermissive
}

func (cc configChain) optionNames() OptionNameMode {
	for _, c := range cc {
		if c != nil && c.optionNames != nil {
			return *c.optionNames
		}
	}
	return OptionNameDash
}

func (cc configChain) usageColumn() int {
	for _, c := range cc {
		if c != nil && c.usageColumn != nil {
			return *c.usageColumn
		}
	}
	return 30
}

func (cc configChain) terminalWidth() (int, bool) {
	for _, c := range cc {
		if c != nil && c.termWidth != nil {
			return *c.termWidth, true
		}
	}
	return 0, false
}

func (cc configChain) valueSources() []ValueSource {
	for _, c := range cc {
		if c != nil && c.sources != nil {
			return c.sources
		}
	}
	return nil
}

func (cc configChain) stdout() io.Writer {
	for _, c := range cc {
		if c != nil && c.stdout != nil {
			return c.stdout
		}
	}
	return nil
}

func (cc configChain) stderr() io.Writer {
	for _, c := range cc {
		if c != nil && c.stderr != nil {
			return c.stderr
		}
	}
	return nil
}
