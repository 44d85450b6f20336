package cmdparse

// Flag declares a nullary option that stores a constant when present. The
// default constant is true with a default value of false; providing
// Default(true) flips the stored constant to false. A slice default switches
// the flag to append its constant on every occurrence.
func Flag(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindFlag, actionStoreConst)
	p.nargs = NargsExact(0)
	p.constVal = true
	p.defaultVal = false
	p.hasDefault = true
	p.applyOpts(opts)
	if p.required {
		panic(defErr("flag %q cannot be required", name))
	}
	switch dv := p.defaultVal.(type) {
	case bool:
		if c, ok := p.constVal.(bool); ok && c == dv {
			p.constVal = !dv
		}
	case []string, []interface{}:
		p.action = actionAppendConst
		_ = dv
	}
	return p
}

// Const overrides the value a Flag or TriFlag stores when present.
func Const(v interface{}) ParamOpt {
	return func(p *Param) {
		p.constVal = v
	}
}

// TriFlag declares a flag with an alternate negative form. The primary form
// stores true and the alternate form (derived by prefixing the long forms,
// "no" by default) stores false; when neither appears the default is kept.
// Use AltPrefix, AltLong, AltShort and AltHelp to adjust the alternate form.
func TriFlag(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindTriFlag, actionStoreConst)
	p.nargs = NargsExact(0)
	p.constVal = true
	p.altConst = false
	p.altPrefix = "no"
	p.applyOpts(opts)
	if p.required {
		panic(defErr("flag %q cannot be required", name))
	}
	return p
}

// Counter declares a nullary option that counts its occurrences. Repeated
// and combined short forms accumulate ("-vvv" counts 3), and an inline
// integer sets the increment ("-v3", "--verbose=2"). The default is 0.
func Counter(name string, opts ...ParamOpt) *Param {
	p := newParam(name, kindCounter, actionCount)
	p.nargs = NargsRange(0, 1)
	p.defaultVal = 0
	p.hasDefault = true
	p.applyOpts(opts)
	if p.required {
		panic(defErr("counter %q cannot be required", name))
	}
	return p
}

// ActionFlag declares a flag that runs fn during parsing instead of storing
// a value. Action flags run in ascending Order once parsing finishes, before
// the command's main function unless AfterMain was given. The built-in help
// flag is an ActionFlag with the lowest order.
func ActionFlag(name string, fn func(*Context) error, opts ...ParamOpt) *Param {
	if fn == nil {
		panic(defErr("action flag %q requires a non-nil function", name))
	}
	p := newParam(name, kindActionFlag, actionStoreConst)
	p.nargs = NargsExact(0)
	p.constVal = true
	p.fn = fn
	p.order = 1
	p.applyOpts(opts)
	return p
}
