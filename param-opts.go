package cmdparse

import (
	"reflect"
	"strconv"
)

// ParamOpt adjusts a parameter at declaration time.
type ParamOpt func(*Param)

func Help(helpText string) ParamOpt {
	return func(p *Param) {
		p.help = helpText
	}
}

// Arity replaces the parameter's default arity spec.
func Arity(n Nargs) ParamOpt {
	return func(p *Param) {
		p.nargs = n
	}
}

// Short adds a short option form, given with its dash ("-v"). Multiple
// characters after the dash register a multi-character short form.
func Short(s string) ParamOpt {
	body := validateShortForm(s)
	return func(p *Param) {
		p.shorts = append(p.shorts, body)
	}
}

// Long adds an explicit long option form, given with its dashes ("--verbose"),
// in addition to the form derived from the parameter name.
func Long(s string) ParamOpt {
	body := validateLongForm(s)
	return func(p *Param) {
		p.longs = append(p.longs, body)
	}
}

// Required overrides the parameter's default required-ness.
func Required(v bool) ParamOpt {
	return func(p *Param) {
		p.required = v
	}
}

// Default sets the value used when nothing was provided by argv, environment
// variables, or value sources.
func Default(v interface{}) ParamOpt {
	return func(p *Param) {
		p.defaultVal = v
		p.hasDefault = true
	}
}

// Env declares environment variables consulted, in order, when no CLI value
// was provided. The first variable present in the environment wins, even
// when its value is empty.
func Env(names ...string) ParamOpt {
	return func(p *Param) {
		p.envVars = append(p.envVars, names...)
	}
}

// Choices restricts the parameter to a fixed set of acceptable values.
func Choices(vals ...string) ParamOpt {
	if len(vals) == 0 {
		panic(defErr("Choices requires at least one value"))
	}
	return func(p *Param) {
		p.choices = append(p.choices, vals...)
	}
}

// MetaVar sets the value placeholder shown in usage text.
func MetaVar(s string) ParamOpt {
	return func(p *Param) {
		p.metavar = s
	}
}

// Hidden keeps the parameter out of help output.
func Hidden() ParamOpt {
	return func(p *Param) {
		p.hidden = true
	}
}

// Convert injects the string-to-value cast applied to each accepted token.
// Errors from fn surface as BadArgument.
func Convert(fn func(string) (interface{}, error)) ParamOpt {
	return func(p *Param) {
		p.convert = fn
	}
}

// LeadingDash sets the policy for values that begin with a dash.
func LeadingDash(mode DashMode) ParamOpt {
	return func(p *Param) {
		p.leadingDash = mode
	}
}

// Target binds a destination pointer; the parameter's final value is
// unmarshalled into it when a parse succeeds.
func Target(ptr interface{}) ParamOpt {
	if ptr == nil {
		panic(defErr("param target must not be nil"))
	}
	if reflect.ValueOf(ptr).Kind() != reflect.Ptr {
		panic(defErr("param target must be a pointer, got %T", ptr))
	}
	return func(p *Param) {
		p.target = ptr
	}
}

// Order sets an ActionFlag's position among the flags run around dispatch;
// lower runs earlier.
func Order(n int) ParamOpt {
	return func(p *Param) {
		p.order = n
	}
}

// AfterMain makes an ActionFlag run after the dispatch target instead of
// before it.
func AfterMain() ParamOpt {
	return func(p *Param) {
		p.afterMain = true
	}
}

// AltPrefix sets the prefix for a TriFlag's alternate long forms; the
// default is "no" (--verbose / --no-verbose).
func AltPrefix(s string) ParamOpt {
	return func(p *Param) {
		p.altPrefix = s
	}
}

// AltLong adds an explicit alternate long form for a TriFlag.
func AltLong(s string) ParamOpt {
	body := validateLongForm(s)
	return func(p *Param) {
		p.altLongs = append(p.altLongs, body)
	}
}

// AltShort adds an alternate short form for a TriFlag.
func AltShort(s string) ParamOpt {
	body := validateShortForm(s)
	return func(p *Param) {
		p.altShorts = append(p.altShorts, body)
	}
}

// AltHelp sets help text for a TriFlag's alternate forms.
func AltHelp(s string) ParamOpt {
	return func(p *Param) {
		p.altHelp = s
	}
}

// ToInt is a Convert function for integer-valued parameters.
func ToInt(s string) (interface{}, error) {
	return strconv.Atoi(s)
}

// ToFloat is a Convert function for float-valued parameters.
func ToFloat(s string) (interface{}, error) {
	return strconv.ParseFloat(s, 64)
}

// ToBool is a Convert function accepting the strconv.ParseBool forms.
func ToBool(s string) (interface{}, error) {
	return strconv.ParseBool(s)
}
